package theme

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/huesite/internal/dom"
	"github.com/emiliopalmerini/huesite/internal/domain"
)

// renderedDocument mimics a server render for hue: fragment in the head and
// the hue on the body.
func renderedDocument(t *testing.T, inj *Injector, hue domain.Hue, body string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(`<html><head></head><body data-hue="` + hue.String() + `">` + body + `</body></html>`))
	require.NoError(t, err)
	_, err = inj.EnsureInjected(context.Background(), hue, doc)
	require.NoError(t, err)
	return doc
}

func newTestController(t *testing.T, body string) (*Controller, *dom.Document, *recordingMetrics) {
	t.Helper()
	metrics := &recordingMetrics{}
	inj := NewInjector(NewCache(NewCompiler()), metrics, "test")
	doc := renderedDocument(t, inj, 233, body)
	c := NewController(doc, inj, doc, 233, WithControllerMetrics(metrics))
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(c.Stop)
	return c, doc, metrics
}

func TestController_SetHueAppendsFragment(t *testing.T) {
	c, doc, metrics := newTestController(t, "")

	require.NoError(t, c.SetHue(context.Background(), 120))

	assert.Equal(t, domain.Hue(120), c.Hue())
	assert.Equal(t, []string{"hue-233", "hue-120"}, doc.StyleIDs())
	bodyHue, _ := doc.BodyAttr(domain.HueAttr)
	assert.Equal(t, "120", bodyHue)

	cookies := doc.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, domain.HueCookie, cookies[0].Name)
	assert.Equal(t, "120", cookies[0].Value)
	assert.Equal(t, 2_592_000, cookies[0].MaxAge)
	assert.False(t, cookies[0].HttpOnly)

	assert.Equal(t, [][2]int{{233, 120}}, metrics.changes)
}

func TestController_SetSameHueIsNoop(t *testing.T) {
	c, doc, _ := newTestController(t, "")
	before := doc.String()

	mutations := 0
	doc.OnAttributeChange(domain.HueAttr, func() { mutations++ })
	require.NoError(t, c.SetHue(context.Background(), 233))

	assert.Equal(t, 0, mutations)
	assert.Empty(t, doc.Cookies())
	assert.Equal(t, before, doc.String())
}

func TestController_ExternalAttributeInjectsOnce(t *testing.T) {
	_, doc, _ := newTestController(t, `<nav><a id="swatch"></a></nav>`)

	doc.SetAttr("#swatch", domain.HueAttr, "45")
	doc.SetAttr("#swatch", domain.HueAttr, "45")

	assert.Equal(t, 1, doc.Count(`style[id="hue-45"]`))
}

func TestController_ExternalInvalidAttributeIgnored(t *testing.T) {
	_, doc, _ := newTestController(t, `<a id="swatch"></a><a id="other"></a>`)

	assert.NotPanics(t, func() {
		doc.Batch(func() {
			doc.SetAttr("#swatch", domain.HueAttr, "9999")
			doc.SetAttr("#other", domain.HueAttr, "12")
		})
	})

	assert.Equal(t, []string{"hue-233", "hue-12"}, doc.StyleIDs())
}

func TestController_StartInjectsServerRenderedHues(t *testing.T) {
	_, doc, _ := newTestController(t, `<a data-hue="10"></a><a data-hue="20"></a><a data-hue="x"></a>`)

	assert.ElementsMatch(t, []string{"hue-233", "hue-10", "hue-20"}, doc.StyleIDs())
}

func TestController_AdoptsExternalBodyHue(t *testing.T) {
	c, doc, _ := newTestController(t, "")
	var seen []domain.Hue
	c.Subscribe(func(h domain.Hue) { seen = append(seen, h) })

	doc.SetBodyAttr(domain.HueAttr, "300")

	assert.Equal(t, domain.Hue(300), c.Hue())
	assert.True(t, doc.Has("hue-300"))
	assert.Equal(t, []domain.Hue{300}, seen)
	cookies := doc.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "300", cookies[0].Value)
}

func TestController_SubscribeAndUnsubscribe(t *testing.T) {
	c, _, _ := newTestController(t, "")
	var seen []domain.Hue
	unsubscribe := c.Subscribe(func(h domain.Hue) { seen = append(seen, h) })

	require.NoError(t, c.SetHue(context.Background(), 1))
	unsubscribe()
	require.NoError(t, c.SetHue(context.Background(), 2))

	assert.Equal(t, []domain.Hue{1}, seen)
}

func TestController_StopDisconnectsWatcher(t *testing.T) {
	c, doc, _ := newTestController(t, `<a id="swatch"></a>`)
	c.Stop()

	doc.SetAttr("#swatch", domain.HueAttr, "99")

	assert.False(t, doc.Has("hue-99"))
}

func TestController_SetHueRejectsInvalid(t *testing.T) {
	c, doc, _ := newTestController(t, "")

	err := c.SetHue(context.Background(), 360)

	assert.ErrorIs(t, err, domain.ErrInvalidHue)
	assert.Equal(t, domain.Hue(233), c.Hue())
	bodyHue, _ := doc.BodyAttr(domain.HueAttr)
	assert.Equal(t, "233", bodyHue)
}

func TestController_SetMode(t *testing.T) {
	c, doc, _ := newTestController(t, "")

	require.NoError(t, c.SetMode(domain.ModeDark))
	require.NoError(t, c.SetMode(domain.ModeDark))

	mode, _ := doc.BodyAttr(domain.ModeAttr)
	assert.Equal(t, "dark", mode)
	require.Len(t, doc.Cookies(), 1)
	assert.Equal(t, domain.ModeCookie, doc.Cookies()[0].Name)

	assert.Error(t, c.SetMode("sepia"))
}

func TestController_ClearMode(t *testing.T) {
	c, doc, _ := newTestController(t, "")
	require.NoError(t, c.SetMode(domain.ModeLight))

	c.ClearMode()

	_, forced := doc.BodyAttr(domain.ModeAttr)
	assert.False(t, forced)
	cookies := doc.Cookies()
	require.Len(t, cookies, 2)
	last := cookies[1]
	assert.Equal(t, domain.ModeCookie, last.Name)
	assert.Empty(t, last.Value)
	assert.Negative(t, last.MaxAge)
}

func TestController_IndependentDocuments(t *testing.T) {
	a, docA, _ := newTestController(t, "")
	b, docB, _ := newTestController(t, "")

	require.NoError(t, a.SetHue(context.Background(), 10))
	require.NoError(t, b.SetHue(context.Background(), 20))

	assert.True(t, docA.Has("hue-10"))
	assert.False(t, docA.Has("hue-20"))
	assert.True(t, docB.Has("hue-20"))
	assert.False(t, docB.Has("hue-10"))
}
