package dom

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_AddIsIdempotent(t *testing.T) {
	d := New()

	require.True(t, d.Add("hue-233", "a{color:red}"))
	require.False(t, d.Add("hue-233", "a{color:blue}"))

	assert.True(t, d.Has("hue-233"))
	assert.Equal(t, []string{"hue-233"}, d.StyleIDs())
	assert.Contains(t, d.String(), "a{color:red}")
	assert.NotContains(t, d.String(), "a{color:blue}")
}

func TestDocument_HasMatchesAnyElement(t *testing.T) {
	d, err := Parse(strings.NewReader(`<html><head></head><body><div id="hue-10"></div></body></html>`))
	require.NoError(t, err)

	assert.True(t, d.Has("hue-10"))
	assert.False(t, d.Add("hue-10", "x"), "an element with the id already exists")
}

func TestDocument_StyleContentIsNotEscaped(t *testing.T) {
	d := New()
	d.Add("hue-1", `[data-hue="1"]>a{color:#fff}`)

	assert.Contains(t, d.String(), `<style id="hue-1">[data-hue="1"]>a{color:#fff}</style>`)
}

func TestDocument_AttrValues(t *testing.T) {
	d, err := Parse(strings.NewReader(`<body data-hue="233"><a data-hue="10"></a><a data-hue="oops"></a><a></a></body>`))
	require.NoError(t, err)

	assert.Equal(t, []string{"233", "10", "oops"}, d.AttrValues("data-hue"))
}

func TestDocument_ObserverCalledPerMutation(t *testing.T) {
	d := New()
	calls := 0
	cancel := d.OnAttributeChange("data-hue", func() { calls++ })

	d.SetBodyAttr("data-hue", "1")
	d.SetBodyAttr("data-hue", "2")
	d.SetBodyAttr("data-mode", "dark")
	assert.Equal(t, 2, calls)

	cancel()
	d.SetBodyAttr("data-hue", "3")
	assert.Equal(t, 2, calls)
}

func TestDocument_BatchCoalescesNotifications(t *testing.T) {
	d, err := Parse(strings.NewReader(`<body><p></p><p></p></body>`))
	require.NoError(t, err)
	calls := 0
	d.OnAttributeChange("data-hue", func() { calls++ })

	d.Batch(func() {
		d.SetAttr("p", "data-hue", "5")
		d.SetBodyAttr("data-hue", "6")
		assert.Equal(t, 0, calls, "notifications wait for the batch to close")
	})

	assert.Equal(t, 1, calls)
}

func TestDocument_ObserverMayMutate(t *testing.T) {
	d := New()
	d.OnAttributeChange("data-hue", func() {
		v, _ := d.BodyAttr("data-hue")
		d.Add("hue-"+v, "")
	})

	d.SetBodyAttr("data-hue", "77")

	assert.True(t, d.Has("hue-77"))
}

func TestDocument_SetAttrNoMatch(t *testing.T) {
	d := New()
	calls := 0
	d.OnAttributeChange("content", func() { calls++ })

	assert.Equal(t, 0, d.SetAttr(`meta[name="theme-color"]`, "content", "#fff"))
	assert.Equal(t, 0, calls)
}

func TestDocument_MetaAndLinks(t *testing.T) {
	d, err := Parse(strings.NewReader(`<html><head>
<meta name="theme-color" content="#000000">
<link rel="icon" sizes="any" href="/favicon.png">
</head><body></body></html>`))
	require.NoError(t, err)

	d.SetMetaContent("theme-color", "#123456")
	d.SetLinkHref(`link[rel="icon"][sizes="any"]`, "data:image/png;base64,AA==")

	content, _ := d.Attr(`meta[name="theme-color"]`, "content")
	href, _ := d.Attr(`link[rel="icon"]`, "href")
	assert.Equal(t, "#123456", content)
	assert.Equal(t, "data:image/png;base64,AA==", href)
}

func TestDocument_Cookies(t *testing.T) {
	d := New()
	d.SetCookie(&http.Cookie{Name: "hue", Value: "120"})

	cookies := d.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "120", cookies[0].Value)
}

func TestDocument_IDsAreUnique(t *testing.T) {
	assert.NotEqual(t, New().ID(), New().ID())
}

func TestDocument_RemoveAttrNotifies(t *testing.T) {
	d := New()
	d.SetBodyAttr("data-mode", "dark")

	calls := 0
	cancel := d.OnAttributeChange("data-mode", func() { calls++ })
	defer cancel()

	d.RemoveBodyAttr("data-mode")
	_, ok := d.BodyAttr("data-mode")
	assert.False(t, ok)
	assert.Equal(t, 1, calls)

	assert.Zero(t, d.RemoveAttr("body", "data-mode"), "absent attribute is not a mutation")
	assert.Equal(t, 1, calls)
}

func TestDocument_InnerHTML(t *testing.T) {
	d, err := Parse(strings.NewReader(`<nav id="hue-nav"><a data-hue="10">10</a></nav>`))
	require.NoError(t, err)

	body, err := d.InnerHTML("body")
	require.NoError(t, err)
	assert.Equal(t, `<nav id="hue-nav"><a data-hue="10">10</a></nav>`, body)

	_, err = d.InnerHTML("main")
	assert.Error(t, err)
}
