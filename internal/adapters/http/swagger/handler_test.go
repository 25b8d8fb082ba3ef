package swagger_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/reaperclan/ladder/internal/adapters/http/swagger"
)

func TestRegister(t *testing.T) {
	Convey("Given the docs routes", t, func() {
		mux := http.NewServeMux()
		swagger.Register(context.Background(), mux)
		ts := httptest.NewServer(mux)
		defer ts.Close()

		Convey("When fetching /api-docs", func() {
			resp, err := http.Get(ts.URL + "/api-docs")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the ReDoc page is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text/html")

				body, err := io.ReadAll(resp.Body)
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "redoc")
				So(string(body), ShouldContainSubstring, "/openapi.yaml")
			})
		})

		Convey("When fetching /openapi.yaml", func() {
			resp, err := http.Get(ts.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the embedded spec is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				body, err := io.ReadAll(resp.Body)
				So(err, ShouldBeNil)
				text := string(body)
				So(strings.HasPrefix(text, "openapi:"), ShouldBeTrue)
				for _, path := range []string{"/leaderboard", "/rankings", "/rankings/{user_id}", "/healthz", "/stats"} {
					So(text, ShouldContainSubstring, path)
				}
			})
		})

		Convey("When registering with a nil mux", func() {
			So(func() { swagger.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
