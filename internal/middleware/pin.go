package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hearth/internal/store"
)

// PINHeader carries the panel PIN on mutating requests.
const PINHeader = "X-Hearth-PIN"

// RequirePIN guards a handler behind the panel PIN. The panel is a shared
// kiosk device; the PIN keeps guests from editing calendar sources. When no
// PIN has been configured, requests pass through.
func RequirePIN(settings *store.SettingsStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hash, err := settings.Get(store.SettingPanelPINHash)
			if err != nil {
				http.Error(w, "failed to check PIN", http.StatusInternalServerError)
				return
			}
			if hash == "" {
				next.ServeHTTP(w, r)
				return
			}

			pin := r.Header.Get(PINHeader)
			if pin == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
				http.Error(w, "invalid PIN", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
