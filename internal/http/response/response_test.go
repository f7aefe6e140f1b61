package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okalab/okalab-backend/internal/pkg/apperror"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestPaginated_HasMoreFollowsPageLength(t *testing.T) {
	tests := []struct {
		name    string
		pageLen int
		limit   int
		hasMore bool
	}{
		{"full page", 20, 20, true},
		{"short page", 7, 20, false},
		{"empty page", 0, 20, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()
			Paginated(c, []int{}, tt.pageLen, tt.limit, 40)

			var body PaginatedResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.True(t, body.Success)
			assert.Equal(t, Pagination{Limit: tt.limit, Offset: 40, HasMore: tt.hasMore}, body.Pagination)
		})
	}
}

func TestError_MapsAppErrorStatus(t *testing.T) {
	c, w := newContext()
	Error(c, apperror.ErrInsufficientFunds)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body.Error.Code)
}
