package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTP(t *testing.T) *HTTP {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewHTTP(5*time.Second, logrus.NewEntry(logger))
}

func TestHTTP_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/cars/toyota":
			fmt.Fprint(w, `<html><body><ul><li class="item round">one</li></ul></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Run("returns the body", func(t *testing.T) {
		t.Parallel()
		f := newTestHTTP(t)

		markup, err := f.Fetch(context.Background(), srv.URL+"/search/cars/toyota")

		require.NoError(t, err)
		assert.Contains(t, markup, `<li class="item round">one</li>`)
	})

	t.Run("repeat visits are allowed", func(t *testing.T) {
		t.Parallel()
		f := newTestHTTP(t)

		for range 2 {
			_, err := f.Fetch(context.Background(), srv.URL+"/search/cars/toyota")
			require.NoError(t, err)
		}
	})

	t.Run("error status is a fetch error", func(t *testing.T) {
		t.Parallel()
		f := newTestHTTP(t)
		url := srv.URL + "/missing"

		_, err := f.Fetch(context.Background(), url)

		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, url, fetchErr.URL)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		f := newTestHTTP(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.Fetch(ctx, srv.URL+"/search/cars/toyota")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetchError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := error(&FetchError{URL: "https://riyasewana.com/search/cars/kia", Err: cause})

	assert.Equal(t, "fetch https://riyasewana.com/search/cars/kia: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestLaunchOpts(t *testing.T) {
	t.Parallel()

	assert.Greater(t, len(LaunchOpts(false)), len(LaunchOpts(true)))
}
