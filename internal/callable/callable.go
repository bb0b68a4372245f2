package callable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/appcheck"
	"firebase.google.com/go/v4/auth"
)

const (
	appCheckHeader = "X-Firebase-AppCheck"
	maxBodyBytes   = 1 << 20
)

// AppCheckVerifier is satisfied by *appcheck.Client.
type AppCheckVerifier interface {
	VerifyToken(token string) (*appcheck.DecodedAppCheckToken, error)
}

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Request is a decoded callable invocation.
type Request struct {
	Data  json.RawMessage
	AppID string
	Auth  *auth.Token
}

// UID returns the caller's uid, or "" for an unauthenticated caller.
func (r *Request) UID() string {
	if r.Auth == nil {
		return ""
	}
	return r.Auth.UID
}

// Decode unmarshals the request data into dst.
func (r *Request) Decode(dst any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return InvalidArgument("request data is required")
	}
	if err := json.Unmarshal(r.Data, dst); err != nil {
		return InvalidArgument("request data is malformed")
	}
	return nil
}

// Func is the business logic behind a callable endpoint.
type Func func(ctx context.Context, req *Request) (any, error)

type Options struct {
	AppCheck         AppCheckVerifier
	Auth             IDTokenVerifier
	AppCheckRequired bool
	AllowedOrigins   []string
}

type requestBody struct {
	Data json.RawMessage `json:"data"`
}

// Handler adapts fn to the Firebase callable HTTPS protocol.
func Handler(name string, opts Options, fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logCtx := slog.With("function", name)

		if opts.setCORS(w, r) && r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, InvalidArgument("callable functions must be invoked with POST"))
			return
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			writeError(w, InvalidArgument("content type must be application/json"))
			return
		}

		req := &Request{}
		appID, err := opts.verifyAppCheck(r)
		if err != nil {
			logCtx.Warn("Rejected request without valid App Check token", "error", err)
			writeError(w, Unauthenticated("Unauthenticated"))
			return
		}
		req.AppID = appID

		token, err := opts.verifyAuth(r)
		if err != nil {
			logCtx.Warn("Rejected request with invalid ID token", "error", err)
			writeError(w, Unauthenticated("Unauthenticated"))
			return
		}
		req.Auth = token

		var body requestBody
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
			logCtx.Warn("Could not decode request body", "error", err)
			writeError(w, InvalidArgument("Bad Request: could not parse JSON"))
			return
		}
		req.Data = body.Data

		res, err := fn(r.Context(), req)
		if err != nil {
			ce := AsError(err)
			if ce.Code == CodeInternal {
				logCtx.Error("Callable failed", "error", err, "appId", req.AppID, "uid", req.UID())
			} else {
				logCtx.Warn("Callable rejected request", "error", err, "appId", req.AppID, "uid", req.UID())
			}
			writeError(w, ce)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"result": res})
	}
}

func (o Options) verifyAppCheck(r *http.Request) (string, error) {
	token := r.Header.Get(appCheckHeader)
	if token == "" {
		if o.AppCheckRequired {
			return "", errors.New("missing App Check token")
		}
		return "", nil
	}
	if o.AppCheck == nil {
		if o.AppCheckRequired {
			return "", errors.New("no App Check verifier configured")
		}
		return "", nil
	}
	decoded, err := o.AppCheck.VerifyToken(token)
	if err != nil {
		return "", err
	}
	return decoded.AppID, nil
}

func (o Options) verifyAuth(r *http.Request) (*auth.Token, error) {
	header := r.Header.Get("Authorization")
	if header == "" || o.Auth == nil {
		return nil, nil
	}
	idToken, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(idToken) == "" {
		return nil, errors.New("invalid authorization header format")
	}
	return o.Auth.VerifyIDToken(r.Context(), strings.TrimSpace(idToken))
}

// setCORS writes CORS headers for an allowed origin and reports whether it did.
func (o Options) setCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return r.Method == http.MethodOptions
	}
	allowed := false
	for _, candidate := range o.AllowedOrigins {
		if candidate == "*" || candidate == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Add("Vary", "Origin")
	if r.Method == http.MethodOptions {
		h.Set("Access-Control-Allow-Methods", "POST")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Firebase-AppCheck, X-Firebase-Instance-ID-Token")
		h.Set("Access-Control-Max-Age", "3600")
	}
	return true
}

func writeError(w http.ResponseWriter, e *Error) {
	writeJSON(w, e.HTTPStatus(), map[string]any{"error": e})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
