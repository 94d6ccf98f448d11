package common

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie carrying flash banners across redirects.
const SessionName = "sqliteweb"

// AddFlash stores a banner to show on the next page render.
func AddFlash(w http.ResponseWriter, r *http.Request, store sessions.Store, b BannerData) error {
	// Get returns a fresh session alongside a decode error for stale cookies.
	sess, _ := store.Get(r, SessionName)
	sess.AddFlash(b.Kind + ":" + b.Text)
	return sess.Save(r, w)
}

// PopFlash removes and returns the pending banner, if any. It must run before
// the response body is written.
func PopFlash(w http.ResponseWriter, r *http.Request, store sessions.Store) BannerData {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		return BannerData{}
	}
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return BannerData{}
	}
	_ = sess.Save(r, w)

	raw, _ := flashes[len(flashes)-1].(string)
	kind, text, ok := strings.Cut(raw, ":")
	if !ok {
		return BannerData{Kind: BannerSuccess, Text: raw}
	}
	return BannerData{Kind: kind, Text: text}
}
