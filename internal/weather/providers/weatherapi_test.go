package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/rainfall-prediction/internal/weather"
)

func hoursJSON(n int, noon string) string {
	hours := make([]string, n)
	for i := range hours {
		hours[i] = `{"pressure_mb": 1000}`
		if i == weather.NoonHour {
			hours[i] = noon
		}
	}
	return "[" + strings.Join(hours, ",") + "]"
}

func newTestProvider(srv *httptest.Server, key string) *WeatherAPIProvider {
	return NewWeatherAPIProvider(srv.Client(), key, WeatherAPIOptions{BaseURL: srv.URL})
}

var testDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func TestFetchForecastParsesDayAndNoon(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		fmt.Fprintf(w, `{"forecast":{"forecastday":[{"date":"2024-06-15","day":{"maxtemp_c":30.5,"mintemp_c":18,"avghumidity":65,"totalprecip_mm":4.2},"hour":%s}]}}`,
			hoursJSON(24, `{"pressure_mb":1009,"cloud":75,"wind_degree":200,"wind_kph":14.4}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv, "secret")
	fc, err := p.FetchForecast(context.Background(), weather.Location{City: "Addis Ababa", Country: "Ethiopia"}, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"key=secret", "dt=2024-06-15", "q=Addis+Ababa%2CEthiopia"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}

	if fc.Day.MaxTempC == nil || *fc.Day.MaxTempC != 30.5 {
		t.Errorf("maxtemp_c not parsed: %v", fc.Day.MaxTempC)
	}
	if fc.Day.AvgTempC != nil {
		t.Errorf("avgtemp_c should be absent, got %v", *fc.Day.AvgTempC)
	}
	if fc.Noon.PressureMb == nil || *fc.Noon.PressureMb != 1009 {
		t.Errorf("noon pressure not parsed: %v", fc.Noon.PressureMb)
	}
	if fc.Noon.WindKph == nil || *fc.Noon.WindKph != 14.4 {
		t.Errorf("noon wind not parsed: %v", fc.Noon.WindKph)
	}
}

func TestFetchForecastFailuresAreDataUnavailable(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad status", http.StatusBadRequest, `{"error":{"code":1006,"message":"No matching location found."}}`, "No matching location found."},
		{"server error", http.StatusInternalServerError, `oops`, "server error"},
		{"malformed json", http.StatusOK, `{"forecast":`, "decode"},
		{"missing forecast", http.StatusOK, `{"location":{}}`, "no forecast day"},
		{"empty forecast days", http.StatusOK, `{"forecast":{"forecastday":[]}}`, "no forecast day"},
		{"missing day", http.StatusOK, `{"forecast":{"forecastday":[{"hour":` + hoursJSON(24, `{}`) + `}]}}`, "no daily aggregates"},
		{"short hour list", http.StatusOK, `{"forecast":{"forecastday":[{"day":{},"hour":` + hoursJSON(6, `{}`) + `}]}}`, "hourly entries"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestProvider(srv, "k").FetchForecast(context.Background(), weather.Location{City: "X", Country: "Y"}, testDate)
			if !errors.Is(err, weather.ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestFetchForecastErrorsHideAPIKey(t *testing.T) {
	const key = "SUPERSECRETKEY"

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	cases := []struct {
		name    string
		baseURL string
	}{
		{"timeout", slow.URL},
		{"connection refused", closedURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &http.Client{Timeout: 20 * time.Millisecond}
			p := NewWeatherAPIProvider(client, key, WeatherAPIOptions{BaseURL: tc.baseURL})

			_, err := p.FetchForecast(context.Background(), weather.Location{City: "X", Country: "Y"}, testDate)
			if !errors.Is(err, weather.ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
			if strings.Contains(err.Error(), key) {
				t.Fatalf("error exposes the api key: %v", err)
			}
			if !strings.Contains(err.Error(), "/forecast.json") {
				t.Fatalf("error should still name the endpoint: %v", err)
			}
		})
	}
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("q") == "Atlantis,Nowhere" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
			return
		}
		fmt.Fprintf(w, `{"forecast":{"forecastday":[{"date":"2024-06-15","day":{},"hour":%s}]}}`, hoursJSON(24, `{}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv, "k")
	for i := 0; i < 10; i++ {
		_, err := p.FetchForecast(context.Background(), weather.Location{City: "Atlantis", Country: "Nowhere"}, testDate)
		if err == nil || !strings.Contains(err.Error(), "No matching location found.") {
			t.Fatalf("call %d: expected upstream client error, got %v", i, err)
		}
	}

	if _, err := p.FetchForecast(context.Background(), weather.Location{City: "Addis Ababa", Country: "Ethiopia"}, testDate); err != nil {
		t.Fatalf("valid location failed after client errors: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 11 {
		t.Fatalf("expected 11 upstream calls, got %d", got)
	}
}

func TestCircuitBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := newTestProvider(srv, "k")
	loc := weather.Location{City: "X", Country: "Y"}
	for i := 0; i < 6; i++ {
		if _, err := p.FetchForecast(context.Background(), loc, testDate); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := p.FetchForecast(context.Background(), loc, testDate)
	if !errors.Is(err, weather.ErrDataUnavailable) || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 6 {
		t.Fatalf("expected 6 upstream calls, got %d", got)
	}
}

func TestCountsAsSuccess(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{context.Canceled, true},
		{&statusError{kind: errUnexpected, code: http.StatusBadRequest}, true},
		{&statusError{kind: errUnexpected, code: http.StatusForbidden}, true},
		{&statusError{kind: errRateLimited, code: http.StatusTooManyRequests}, false},
		{&statusError{kind: errServerError, code: http.StatusServiceUnavailable}, false},
		{context.DeadlineExceeded, false},
	}
	for _, tc := range cases {
		if got := countsAsSuccess(tc.err); got != tc.want {
			t.Errorf("countsAsSuccess(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestFetchForecastSingleAttemptByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv, "k").FetchForecast(context.Background(), weather.Location{City: "X"}, testDate)
	if !errors.Is(err, weather.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", got)
	}
}

func TestFetchForecastTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := srv.Client()
	client.Timeout = 50 * time.Millisecond
	p := NewWeatherAPIProvider(client, "k", WeatherAPIOptions{BaseURL: srv.URL})

	_, err := p.FetchForecast(context.Background(), weather.Location{City: "X"}, testDate)
	if !errors.Is(err, weather.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable on timeout, got %v", err)
	}
}

func TestFetchForecastRequiresAPIKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "", WeatherAPIOptions{})
	_, err := p.FetchForecast(context.Background(), weather.Location{City: "X"}, testDate)
	if !errors.Is(err, weather.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestRetryOnlyTransientErrors(t *testing.T) {
	if retryable(&statusError{kind: errUnexpected, code: 400}) {
		t.Error("4xx should not be retried")
	}
	if !retryable(&statusError{kind: errServerError, code: 503}) {
		t.Error("5xx should be retried")
	}
	if !retryable(&statusError{kind: errRateLimited, code: 429}) {
		t.Error("429 should be retried")
	}
}
