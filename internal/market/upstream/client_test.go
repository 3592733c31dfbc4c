package upstream_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"finsight/internal/market/upstream"
)

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller and a mock http client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the mock client is the one used for the request
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			buffer := &bytes.Buffer{}
			require.NoError(t, json.NewEncoder(buffer).Encode(map[string]any{}))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(buffer),
			}, nil
		}).
		Times(1)

	client := upstream.NewClient(upstream.WithHTTPClient(httpClient))
	require.NotNil(t, client)

	// Act: empty payload decodes but fails shape validation
	_, err := client.Search(context.Background(), "tech")
	require.Error(t, err)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	baseURL := "http://localhost:8080"

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())

			buffer := &bytes.Buffer{}
			require.NoError(t, json.NewEncoder(buffer).Encode(map[string]any{}))

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(buffer),
			}, nil
		}).
		Times(1)

	client := upstream.NewClient(
		upstream.WithBaseURL(baseURL),
		upstream.WithHTTPClient(httpClient),
	)
	_, _ = client.Quote(context.Background(), "AAPL")
}

func TestWithAPIKey_AddedToQuery(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "secret", req.URL.Query().Get("apikey"))
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{}")),
			}, nil
		}).
		Times(1)

	client := upstream.NewClient(
		upstream.WithAPIKey("secret"),
		upstream.WithHTTPClient(httpClient),
	)
	_, _ = client.Search(context.Background(), "bank")
}

func TestQuotes_DecodesValidPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v7/finance/quote", r.URL.Path)
		require.Equal(t, "AAPL,MSFT", r.URL.Query().Get("symbols"))
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[
			{"symbol":"AAPL","shortName":"Apple Inc.","regularMarketPrice":187.42,"regularMarketChange":1.2,"regularMarketChangePercent":0.64,"regularMarketVolume":55000000,"marketCap":2900000000000},
			{"symbol":"MSFT","shortName":"Microsoft","regularMarketPrice":410.11}
		],"error":null}}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	quotes, err := client.Quotes(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, "AAPL", quotes[0].Symbol)
	require.Equal(t, 187.42, quotes[0].Price)
	require.Equal(t, 0.64, quotes[0].ChangePercent)
	require.Equal(t, int64(55000000), quotes[0].Volume)
	// absent optional fields stay zero instead of failing the decode
	require.Zero(t, quotes[1].Change)
}

func TestQuote_MissingPriceIsShapeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL"}],"error":null}}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	_, err := client.Quote(context.Background(), "AAPL")
	require.Error(t, err)

	var ue *upstream.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.True(t, ue.Shape)
}

func TestQuote_Non2xxIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	_, err := client.Quote(context.Background(), "AAPL")

	var ue *upstream.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.False(t, ue.Shape)
	require.Equal(t, http.StatusTooManyRequests, ue.Status)
}

func TestSearch_MissingQuotesArrayIsShapeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 0}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "tech")

	var ue *upstream.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.True(t, ue.Shape)
}

func TestHistory_DropsNullBars(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		_, _ = w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1714435200,1714521600,1714608000],
			"indicators":{"quote":[{
				"open":[170.1,null,171.4],
				"high":[172.0,172.5,173.0],
				"low":[169.0,169.5,170.0],
				"close":[171.2,null,172.8],
				"volume":[1000,null,3000]
			}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	points, err := client.History(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, points, 2, "the null bar must be dropped, not zero-filled")
	require.Equal(t, 171.2, points[0].Close)
	require.Equal(t, int64(3000), points[1].Volume)
}

func TestHistory_AllNullIsShapeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1714435200],
			"indicators":{"quote":[{"open":[null],"high":[null],"low":[null],"close":[null],"volume":[null]}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(upstream.WithBaseURL(srv.URL))
	_, err := client.History(context.Background(), "AAPL")

	var ue *upstream.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.True(t, ue.Shape)
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(1)

	client := upstream.NewClient(upstream.WithHTTPClient(httpClient))
	_, err := client.Quote(context.Background(), "AAPL")

	var ue *upstream.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.False(t, ue.Shape)
	require.Zero(t, ue.Status)
}
