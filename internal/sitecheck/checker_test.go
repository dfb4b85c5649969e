package sitecheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html>
<html>
<head>
  <title>TechCorp</title>
  <script type="application/ld+json">
    {"@context": "https://schema.org", "@type": "Organization", "name": "TechCorp",
     "founder": {"@type": "Person", "name": "Ada"}}
  </script>
  <script type="application/ld+json">
    {"@context": "https://schema.org", "@graph": [{"@type": ["Product", "SoftwareApplication"]}]}
  </script>
  <script type="application/ld+json">{not json</script>
  <script type="text/javascript">var x = {"@type": "FAQPage"};</script>
</head>
<body><h1>TechCorp</h1></body>
</html>`

func TestChecker_SchemaTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(page))
		case "/bare":
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	checker := NewChecker(5 * time.Second)

	t.Run("Collects declared types", func(t *testing.T) {
		types, err := checker.SchemaTypes(context.Background(), server.URL+"/")
		require.NoError(t, err)

		assert.True(t, types["Organization"])
		assert.True(t, types["Person"])
		assert.True(t, types["Product"])
		assert.True(t, types["SoftwareApplication"])
		assert.False(t, types["FAQPage"], "plain scripts are not structured data")
	})

	t.Run("Page without structured data", func(t *testing.T) {
		types, err := checker.SchemaTypes(context.Background(), server.URL+"/bare")
		require.NoError(t, err)
		assert.Empty(t, types)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		_, err := checker.SchemaTypes(context.Background(), server.URL+"/missing")
		assert.Error(t, err)
	})
}
