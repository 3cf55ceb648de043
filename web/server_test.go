package web

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthinspect/inspect"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/rimage"
	"go.viam.com/depthinspect/viewer"
)

type staticInspection struct {
	inspection viewer.Inspection
	ok         bool
}

func (s staticInspection) Latest() (viewer.Inspection, bool) {
	return s.inspection, s.ok
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPointerAndKeyEvents(t *testing.T) {
	events := viewer.NewEventQueue()
	s := NewServer(events, nil, logging.NewTestLogger(t))

	rec := do(t, s.Handler(), http.MethodPost, "/pointer", `{"kind":"move","x":12,"y":34}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	rec = do(t, s.Handler(), http.MethodPost, "/pointer", `{"kind":"down","x":1,"y":2}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	rec = do(t, s.Handler(), http.MethodPost, "/pointer", `{"kind":"wheel","x":1,"y":2}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	rec = do(t, s.Handler(), http.MethodPost, "/pointer", `not json`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)

	rec = do(t, s.Handler(), http.MethodPost, "/key", `{"key":"q"}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	rec = do(t, s.Handler(), http.MethodPost, "/key", `{"key":"Escape"}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	rec = do(t, s.Handler(), http.MethodPost, "/key", `{"key":"Shift"}`)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)

	pointer, keys := events.Drain()
	test.That(t, pointer, test.ShouldResemble, []viewer.PointerEvent{
		{Kind: inspect.PointerMove, X: 12, Y: 34},
		{Kind: inspect.PointerDown, X: 1, Y: 2},
		{Kind: inspect.PointerOther, X: 1, Y: 2},
	})
	test.That(t, keys, test.ShouldResemble, []rune{'q', viewer.KeyEscape})
}

func TestImages(t *testing.T) {
	s := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t))

	rec := do(t, s.Handler(), http.MethodGet, "/images/depth", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)

	dm := rimage.NewEmptyDepthMap(6, 4)
	dm.SetDepth(5, 3, 2500)
	test.That(t, s.Present(viewer.WindowDepth, dm), test.ShouldBeNil)

	rec = do(t, s.Handler(), http.MethodGet, "/images/depth", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Header().Get("Content-Type"), test.ShouldEqual, "image/png")

	img, err := png.Decode(rec.Body)
	test.That(t, err, test.ShouldBeNil)
	gray, ok := img.(*image.Gray16)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, gray.Gray16At(5, 3).Y, test.ShouldEqual, uint16(2500))
}

func TestIndex(t *testing.T) {
	s := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t))
	rec := do(t, s.Handler(), http.MethodGet, "/", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	body := rec.Body.String()
	test.That(t, body, test.ShouldContainSubstring, `id="region"`)
	test.That(t, body, test.ShouldContainSubstring, `"/pointer"`)
}

func TestInspection(t *testing.T) {
	s := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t))
	rec := do(t, s.Handler(), http.MethodGet, "/inspection", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)

	s.SetInspectionProvider(staticInspection{})
	rec = do(t, s.Handler(), http.MethodGet, "/inspection", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)

	s.SetInspectionProvider(staticInspection{ok: true, inspection: viewer.Inspection{
		Frame: 9,
		State: inspect.State{Point: image.Pt(3, 4), Radius: 3, Visible: true},
		Stats: inspect.NeighborhoodStats{Valid: 49, Mean: 812.5},
	}})
	rec = do(t, s.Handler(), http.MethodGet, "/inspection", "")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)

	var got viewer.Inspection
	test.That(t, json.NewDecoder(rec.Body).Decode(&got), test.ShouldBeNil)
	test.That(t, got.Frame, test.ShouldEqual, uint64(9))
	test.That(t, got.State.Point, test.ShouldResemble, image.Pt(3, 4))
	test.That(t, got.Stats.Mean, test.ShouldEqual, 812.5)
}

func TestStartClose(t *testing.T) {
	s := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t))
	test.That(t, s.Addr(), test.ShouldBeNil)
	test.That(t, s.Close(context.Background()), test.ShouldBeNil)

	test.That(t, s.Start("localhost:0"), test.ShouldBeNil)
	test.That(t, s.Start("localhost:0"), test.ShouldNotBeNil)
	addr := s.Addr()
	test.That(t, addr, test.ShouldNotBeNil)

	//nolint:noctx
	resp, err := http.Get("http://" + addr.String() + "/")
	test.That(t, err, test.ShouldBeNil)
	_, err = io.Copy(io.Discard, resp.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, resp.Body.Close(), test.ShouldBeNil)
	test.That(t, resp.StatusCode, test.ShouldEqual, http.StatusOK)

	test.That(t, s.Close(context.Background()), test.ShouldBeNil)
	test.That(t, s.Addr(), test.ShouldBeNil)
}

func TestAllowedOrigins(t *testing.T) {
	plain := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	plain.Handler().ServeHTTP(rec, req)
	test.That(t, rec.Header().Get("Access-Control-Allow-Origin"), test.ShouldBeEmpty)

	s := NewServer(viewer.NewEventQueue(), nil, logging.NewTestLogger(t), WithAllowedOrigins("http://dashboard.local"))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Header().Get("Access-Control-Allow-Origin"), test.ShouldEqual, "http://dashboard.local")
}
