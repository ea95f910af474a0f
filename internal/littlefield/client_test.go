package littlefield

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lfcli/internal/config"
)

const entryPage = `<html><body>
<form action="check" method="post">
<input type="hidden" name="institution" value="oneill">
<input type="hidden" name="ismobile" value="false">
<input type="text" name="id">
<input type="password" name="password">
</form>
</body></html>`

func testConfig(serverURL string) config.LittlefieldConfig {
	return config.LittlefieldConfig{
		EntryURL:          serverURL + "/lt/oneill/entry.html",
		PlotURL:           serverURL + "/Littlefield/Plot",
		HTTPTimeout:       5 * time.Second,
		RequestsPerSecond: 1000,
	}
}

func TestLogin(t *testing.T) {
	var gotForm map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/lt/oneill/entry.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, entryPage)
	})
	mux.HandleFunc("/lt/oneill/check", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"id":          r.PostFormValue("id"),
			"password":    r.PostFormValue("password"),
			"institution": r.PostFormValue("institution"),
		}
		http.SetCookie(w, &http.Cookie{Name: "lt_session", Value: "abc123"})
		fmt.Fprint(w, "<html><body>Littlefield Technologies status</body></html>")
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = client.Login(context.Background(), "team42", "hunter2")
	require.NoError(t, err)

	// Credentials are posted under the original field names and hidden
	// inputs are carried over.
	assert.Equal(t, "team42", gotForm["id"])
	assert.Equal(t, "hunter2", gotForm["password"])
	assert.Equal(t, "oneill", gotForm["institution"])
}

func TestLoginRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lt/oneill/entry.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, entryPage)
	})
	mux.HandleFunc("/lt/oneill/check", func(w http.ResponseWriter, r *http.Request) {
		// Bad credentials bounce back to the entry form.
		fmt.Fprint(w, entryPage)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = client.Login(context.Background(), "team42", "wrong")
	assert.ErrorIs(t, err, ErrLoginRejected)
}

func TestLoginEntryPageUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = client.Login(context.Background(), "team42", "hunter2")
	require.Error(t, err)

	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestLoginEntryPageWithoutForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing here</body></html>")
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = client.Login(context.Background(), "team42", "hunter2")

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.Error(), "login form")
}

func TestFetchPlot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Littlefield/Plot", r.URL.Path)
		assert.Equal(t, "INV", r.URL.Query().Get("data"))
		assert.Equal(t, "all", r.URL.Query().Get("x"))
		fmt.Fprint(w, "<script>points: '1 9480'</script>")
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	body, err := client.FetchPlot(context.Background(), "INV")
	require.NoError(t, err)
	assert.Contains(t, body, "points: '1 9480'")
}

func TestFetchPlotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not logged in", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = client.FetchPlot(context.Background(), "CASH")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.URL, "data=CASH")
}

func TestCatalogShape(t *testing.T) {
	// The catalog drives the output schema: its series counts must add up
	// to the full column width, with the multi-series datasets last.
	total := 0
	for _, category := range Catalog {
		total += category.Series
	}
	assert.Equal(t, 19, total)

	require.Len(t, Catalog, 13)
	assert.Equal(t, "INV", Catalog[0].Dataset)
	for _, category := range Catalog[:10] {
		assert.Equal(t, 1, category.Series, category.Dataset)
	}
	for _, category := range Catalog[10:] {
		assert.Equal(t, MultiSeriesCount, category.Series, category.Dataset)
	}
}
