package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/dimensionalz-backend/pkg/enums"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		role string
		want int
	}{
		{name: "admin passes", role: "admin", want: http.StatusOK},
		{name: "user is forbidden", role: "user", want: http.StatusForbidden},
		{name: "missing role is forbidden", role: "", want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(enums.UserRoleAdmin, nil)(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.role != "" {
				req = req.WithContext(WithRole(req.Context(), tc.role))
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.Code)
			}
		})
	}
}
