package templates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	subject, text, html, err := Render(Welcome, map[string]any{
		"AppName": "user-account-service",
		"Name":    "Ann",
		"Email":   "a@b.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Welcome to user-account-service", subject)
	require.Contains(t, text, "Hi Ann")
	require.Contains(t, html, "<b>a@b.com</b>")
	// No verify link in data means no verify block
	require.NotContains(t, html, "Verify your email")
}

func TestRender_VerifyEmail(t *testing.T) {
	_, text, html, err := Render(VerifyEmail, map[string]any{
		"Name":       "Ann",
		"VerifyLink": "https://app.example.com/verify?token=abc",
	})
	require.NoError(t, err)
	require.Contains(t, text, "https://app.example.com/verify?token=abc")
	require.Contains(t, html, `href="https://app.example.com/verify?token=abc"`)
}

func TestRender_LoginNotification_OptionalFields(t *testing.T) {
	_, text, html, err := Render(LoginNotification, map[string]any{
		"Name": "Ann",
		"IP":   "203.0.113.7",
	})
	require.NoError(t, err)
	require.Contains(t, text, "203.0.113.7")
	require.NotContains(t, html, "Location:")

	_, _, html, err = Render(LoginNotification, map[string]any{
		"Name":     "Ann",
		"IP":       "203.0.113.7",
		"Location": "Berlin, Germany",
	})
	require.NoError(t, err)
	require.Contains(t, html, "Berlin, Germany")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("no-such-template", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-template")
}

func TestFormatGeo(t *testing.T) {
	require.Equal(t, "Berlin, Brandenburg, Germany", FormatGeo(Geo{City: "Berlin", Region: "Brandenburg", Country: "Germany"}))
	require.Equal(t, "Germany", FormatGeo(Geo{Country: "Germany"}))
	require.Equal(t, "", FormatGeo(Geo{}))
	require.Equal(t, "Berlin, Germany", FormatGeo(Geo{City: "Berlin", Region: "  ", Country: "Germany"}))
}

func TestIPAPIResolver_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{
			"country": "Germany", "regionName": "Berlin", "city": "Berlin", "timezone": "Europe/Berlin",
		}))
	}))
	defer srv.Close()

	// Point the resolver at the test server via a rewriting transport.
	client := &http.Client{Transport: rewriteTransport{base: srv.URL}}
	g, err := IPAPIResolver{Client: client}.Lookup(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	require.Equal(t, "Germany", g.Country)
	require.Equal(t, "Europe/Berlin", g.Timezone)
}

type rewriteTransport struct {
	base string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected, err := http.NewRequestWithContext(req.Context(), req.Method, rt.base+req.URL.RequestURI(), req.Body)
	if err != nil {
		return nil, err
	}
	redirected.Header = req.Header
	return http.DefaultTransport.RoundTrip(redirected)
}
