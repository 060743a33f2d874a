package ginmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	formkit "github.com/reoring/formkit"
	ginmw "github.com/reoring/formkit/middleware/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateData(t *testing.T) {
	s := formkit.Schema{Name: "stock", Fields: []formkit.FieldDefinition{{Name: "qty", Type: formkit.TypeNumber, Required: true}}}
	r := gin.New()
	r.POST("/", ginmw.ValidateData(s), func(c *gin.Context) {
		rec, ok := ginmw.GetRecord(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		n, _ := rec["qty"].Float()
		c.JSON(http.StatusOK, gin.H{"qty": n})
	})

	if w := serve(r, `{"data":{"qty":4}}`); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"qty":4`) {
		t.Fatalf("valid body: %d %s", w.Code, w.Body.String())
	}
	w := serve(r, `{"data":{}}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), formkit.CodeMissingRequiredField) {
		t.Fatalf("missing field: %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, `{"data":`); w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "detail") {
		t.Fatalf("malformed body: %d %s", w.Code, w.Body.String())
	}
}

func TestRejectDuplicateKeys(t *testing.T) {
	r := gin.New()
	r.Use(ginmw.RejectDuplicateKeys())
	r.POST("/", func(c *gin.Context) {
		var v map[string]any
		if err := c.ShouldBindJSON(&v); err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, v)
	})
	if w := serve(r, `{"a":1,"a":2}`); w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"/a"`) {
		t.Fatalf("duplicate: %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, `{"a":1}`); w.Code != http.StatusOK {
		t.Fatalf("body not restored: %d %s", w.Code, w.Body.String())
	}
}
