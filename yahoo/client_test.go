package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const testChainJSON = `{"optionChain":{"result":[{
	"underlyingSymbol":"AAPL",
	"expirationDates":[1760659200,1761264000],
	"strikes":[90,100,110],
	"options":[{
		"expirationDate":1760659200,
		"calls":[
			{"contractSymbol":"AAPL251017C00090000","strike":90,"lastPrice":12.1,"bid":12,"ask":12.3,"volume":10,"openInterest":100,"impliedVolatility":0.31},
			{"contractSymbol":"AAPL251017C00100000","strike":100,"lastPrice":4.2,"bid":4.1,"ask":4.3,"volume":200,"openInterest":900,"impliedVolatility":0.25},
			{"contractSymbol":"AAPL251017C00110000","strike":110,"lastPrice":0.9,"bid":0.85,"ask":0.95,"volume":50,"openInterest":300,"impliedVolatility":0.28}
		],
		"puts":[
			{"contractSymbol":"AAPL251017P00100000","strike":100,"lastPrice":3.9,"bid":3.8,"ask":4.0,"volume":150,"openInterest":800,"impliedVolatility":0.27},
			{"contractSymbol":"AAPL251017P00120000","strike":120,"lastPrice":20,"bid":19.5,"ask":20.5,"openInterest":5,"impliedVolatility":0}
		]
	}]
}],"error":null}}`

// fakeYahoo serves the options page and the JSON endpoint
type fakeYahoo struct {
	pageHits  atomic.Int32
	chainHits atomic.Int32

	page      func(w http.ResponseWriter, r *http.Request)
	chain     func(w http.ResponseWriter, r *http.Request)
	crumb     string
	lastDate  atomic.Value
	lastAgent atomic.Value
}

func newFakeYahoo(t *testing.T) (*fakeYahoo, *httptest.Server) {
	t.Helper()
	f := &fakeYahoo{crumb: `abc/def`}

	f.page = func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "B", Value: "session", Path: "/"})
		fmt.Fprintf(w, `<html><script>root.App.main = {"context":{"dispatcher":{"stores":{"CrumbStore":{"crumb":"%s"}}}}}</script></html>`, f.crumb)
	}
	f.chain = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "abc/def" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if c, err := r.Cookie("B"); err != nil || c.Value != "session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, testChainJSON)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/quote/AAPL/options", func(w http.ResponseWriter, r *http.Request) {
		f.pageHits.Add(1)
		f.lastAgent.Store(r.UserAgent())
		f.page(w, r)
	})
	mux.HandleFunc("/v7/finance/options/AAPL", func(w http.ResponseWriter, r *http.Request) {
		f.chainHits.Add(1)
		f.lastDate.Store(r.URL.Query().Get("date"))
		f.chain(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Options{WebURL: srv.URL, APIURL: srv.URL + "/"}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func expectKind(t *testing.T, err error, kind Kind) *FetchError {
	t.Helper()
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected *FetchError, got %v", err)
	}
	if fe.Kind != kind {
		t.Errorf("Expected kind %s, got %s", kind, fe.Kind)
	}
	return fe
}

func TestFetchChainSuccess(t *testing.T) {
	f, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)

	chain, err := c.FetchChain(context.Background(), "AAPL", 0)
	if err != nil {
		t.Fatalf("FetchChain failed: %v", err)
	}

	if chain.Symbol != "AAPL" || chain.Expiration != 1760659200 {
		t.Errorf("Expected AAPL at 1760659200, got %s at %d", chain.Symbol, chain.Expiration)
	}
	if len(chain.Calls) != 3 || len(chain.Puts) != 2 {
		t.Errorf("Expected 3 calls and 2 puts, got %d and %d", len(chain.Calls), len(chain.Puts))
	}
	if chain.Calls[1].ImpliedVolatility != 0.25 {
		t.Errorf("Expected IV 0.25, got %v", chain.Calls[1].ImpliedVolatility)
	}
	if agent, _ := f.lastAgent.Load().(string); agent != DefaultUserAgent {
		t.Errorf("Expected browser user agent, got %q", agent)
	}
}

func TestFetchChainReusesCrumb(t *testing.T) {
	f, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.FetchChain(ctx, "AAPL", 0); err != nil {
			t.Fatalf("FetchChain %d failed: %v", i, err)
		}
	}
	if got := f.pageHits.Load(); got != 1 {
		t.Errorf("Expected one session bootstrap, got %d", got)
	}
	if got := f.chainHits.Load(); got != 3 {
		t.Errorf("Expected 3 chain requests, got %d", got)
	}
}

func TestFetchChainPassesDate(t *testing.T) {
	f, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)

	if _, err := c.FetchChain(context.Background(), "AAPL", 1761264000); err != nil {
		t.Fatalf("FetchChain failed: %v", err)
	}
	if got, _ := f.lastDate.Load().(string); got != "1761264000" {
		t.Errorf("Expected date query, got %q", got)
	}
}

func TestFetchChainRefreshesRejectedCrumb(t *testing.T) {
	f, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)

	// Stale crumb from an earlier session
	c.crumb = "expired"

	if _, err := c.FetchChain(context.Background(), "AAPL", 0); err != nil {
		t.Fatalf("Expected refresh to recover, got %v", err)
	}
	if got := f.pageHits.Load(); got != 1 {
		t.Errorf("Expected one bootstrap after rejection, got %d", got)
	}
	if got := f.chainHits.Load(); got != 2 {
		t.Errorf("Expected rejected and retried chain requests, got %d", got)
	}
}

func TestFetchChainPersistentRejection(t *testing.T) {
	f, srv := newFakeYahoo(t)
	f.chain = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}
	c := newTestClient(t, srv)

	_, err := c.FetchChain(context.Background(), "AAPL", 0)
	fe := expectKind(t, err, KindHTTPStatus)
	if fe.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", fe.StatusCode)
	}
	if c.crumb != "" {
		t.Error("Expected rejected crumb dropped")
	}
}

func TestFetchChainCrumbMissing(t *testing.T) {
	f, srv := newFakeYahoo(t)
	f.page = func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>consent required</html>")
	}
	c := newTestClient(t, srv)

	_, err := c.FetchChain(context.Background(), "AAPL", 0)
	expectKind(t, err, KindCrumb)
	if f.chainHits.Load() != 0 {
		t.Error("Expected no chain request without crumb")
	}
}

func TestFetchChainSessionFailure(t *testing.T) {
	_, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.FetchChain(context.Background(), "AAPL", 0)
	expectKind(t, err, KindSession)
}

func TestFetchChainSessionPageStatus(t *testing.T) {
	f, srv := newFakeYahoo(t)
	f.page = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	c := newTestClient(t, srv)

	_, err := c.FetchChain(context.Background(), "AAPL", 0)
	fe := expectKind(t, err, KindSession)
	if fe.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", fe.StatusCode)
	}
}

func TestFetchChainHTTPStatus(t *testing.T) {
	f, srv := newFakeYahoo(t)
	f.chain = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}
	c := newTestClient(t, srv)

	_, err := c.FetchChain(context.Background(), "AAPL", 0)
	fe := expectKind(t, err, KindHTTPStatus)
	if fe.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", fe.StatusCode)
	}
	if c.crumb == "" {
		t.Error("Expected crumb kept on server error")
	}
}

func TestFetchChainDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"optionChain":`},
		{"empty result", `{"optionChain":{"result":[],"error":null}}`},
		{"api error", `{"optionChain":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"no envelope", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFakeYahoo(t)
			f.chain = func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}
			c := newTestClient(t, srv)

			_, err := c.FetchChain(context.Background(), "AAPL", 0)
			expectKind(t, err, KindDecode)
		})
	}
}

func TestDecodeChainFinanceEnvelope(t *testing.T) {
	body := `{"finance":{"result":[{"expirationDates":[1],"strikes":[5],"options":[{"expirationDate":1,"calls":[],"puts":[]}]}],"error":null}}`

	chain, err := decodeChain("XYZ", []byte(body))
	if err != nil {
		t.Fatalf("decodeChain failed: %v", err)
	}
	if chain.Symbol != "XYZ" || chain.Expiration != 1 {
		t.Errorf("Expected XYZ at 1, got %s at %d", chain.Symbol, chain.Expiration)
	}
}

func TestFetchChainHonorsContext(t *testing.T) {
	_, srv := newFakeYahoo(t)
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchChain(ctx, "AAPL", 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestExtractCrumbUnescapes(t *testing.T) {
	crumb, err := extractCrumb([]byte(`"CrumbStore":{"crumb":"x\/y/z"}`))
	if err != nil {
		t.Fatalf("extractCrumb failed: %v", err)
	}
	if crumb != "x/y/z" {
		t.Errorf("Expected x/y/z, got %q", crumb)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	err := &FetchError{Kind: KindHTTPStatus, Symbol: "AAPL", StatusCode: 500}
	if got := err.Error(); got != "yahoo http status AAPL: 500 Internal Server Error" {
		t.Errorf("Unexpected message %q", got)
	}
}
