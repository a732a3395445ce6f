package server

import (
	"context"
	"net/http"

	"tailscale.com/client/tailscale/apitype"
)

type contextKey int

const (
	userIDKey contextKey = iota
	userInfoKey
)

const (
	devUserID      = 1
	devLogin       = "local"
	devDisplayName = "Local Dev User"
)

// UserInfo identifies the caller.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// WhoIsClient resolves a remote address to a tailnet identity.
// *local.Client from tailscale.com/client/local implements it.
type WhoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// UserResolver maps a login to a local user ID, creating it on first sight.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// DevIdentity marks every request as the local dev user (ID 1).
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), devUserID,
			UserInfo{Login: devLogin, DisplayName: devDisplayName})))
	})
}

// TailscaleIdentity resolves the tailnet user behind each connection and maps
// it to a local user. Requests whose peer cannot be identified are rejected.
func TailscaleIdentity(lc WhoIsClient, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			who, err := lc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil || who.UserProfile.LoginName == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown tailnet peer"})
				return
			}
			info := UserInfo{
				Login:       who.UserProfile.LoginName,
				DisplayName: who.UserProfile.DisplayName,
			}
			uid, err := users.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolving user"})
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), uid, info)))
		})
	}
}

// identity picks Tailscale or dev identity depending on how the server runs.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db)(next).ServeHTTP(w, r)
	})
}

func withUser(ctx context.Context, uid int, info UserInfo) context.Context {
	ctx = context.WithValue(ctx, userIDKey, uid)
	return context.WithValue(ctx, userInfoKey, info)
}

// userIDFromContext returns the caller's user ID, defaulting to the dev user.
func userIDFromContext(r *http.Request) int {
	if uid, ok := r.Context().Value(userIDKey).(int); ok {
		return uid
	}
	return devUserID
}

func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return UserInfo{Login: devLogin, DisplayName: devDisplayName}
}
