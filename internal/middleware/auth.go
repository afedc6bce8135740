package middleware

import (
	"net/http"

	"github.com/dukerupert/bywater/internal/auth"
	"github.com/dukerupert/bywater/internal/store"
)

const accessKeyHeader = "X-Access-Key"

// RequireAccessKey resolves the shared access key to a household and
// populates AuthContext. The key is read from the X-Access-Key header, with
// a "key" query parameter fallback for EventSource clients that cannot set
// headers.
func RequireAccessKey(householdStore *store.HouseholdStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(accessKeyHeader)
			if key == "" {
				key = r.URL.Query().Get("key")
			}
			if key == "" {
				http.Error(w, "access key required", http.StatusUnauthorized)
				return
			}

			household, err := householdStore.GetByAccessKeyHash(auth.HashKey(key))
			if err != nil || household == nil {
				http.Error(w, "invalid access key", http.StatusUnauthorized)
				return
			}

			ac := auth.AuthContext{
				HouseholdID:   household.ID,
				HouseholdName: household.Name,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
