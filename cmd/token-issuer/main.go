// Token issuer for voice clients. Mints room access tokens for media-server
// joins and ephemeral client secrets for browser WebRTC sessions.
// Features: optional OIDC verification for callers, simple CORS, and
// Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	oidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbaskaran/voiceagent/internal/config"
	"github.com/mbaskaran/voiceagent/token"
	"github.com/mbaskaran/voiceagent/webrtc"
)

var (
	tokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "token_issuer_tokens_issued_total",
		Help: "Tokens issued, by kind.",
	}, []string{"kind"})
	mintLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "token_issuer_mint_duration_seconds",
		Help:    "Latency of ephemeral secret minting.",
		Buckets: prometheus.DefBuckets,
	})
)

type RoomTokenResponse struct {
	Token string `json:"token"`
	Room  string `json:"room"`
}

type EphemeralResponse struct {
	SessionID string `json:"session_id"`
	Secret    string `json:"secret"`
	Model     string `json:"model"`
}

type server struct {
	tokenKey    string
	tokenSecret string
	tokenTTL    time.Duration

	openaiBaseURL string
	openaiKey     string
	model         string
	voice         string

	// OIDC config
	tokenType string // "id" (ID token) or "access" (JWT access token)
	issuer    string
	audience  string
	verifier  *oidc.IDTokenVerifier
	jwks      *keyfunc.JWKS

	allowedOrigins []string
}

func main() {
	tokenKey, tokenSecret, err := config.TokenCredentials()
	if err != nil {
		log.Fatal(err)
	}
	openaiKey, err := config.OpenAIAPIKey()
	if err != nil {
		log.Fatal(err)
	}

	s := &server{
		tokenKey:      tokenKey,
		tokenSecret:   tokenSecret,
		tokenTTL:      durationEnv("TOKEN_TTL", 6*time.Hour),
		openaiBaseURL: env("OPENAI_API_BASE", "https://api.openai.com"),
		openaiKey:     openaiKey,
		model:         env("REALTIME_MODEL", "gpt-realtime"),
		voice:         env("REALTIME_VOICE", "marin"),
	}

	if iss := os.Getenv("OIDC_ISSUER"); iss != "" {
		aud := must("OIDC_AUDIENCE")
		s.issuer = iss
		s.audience = aud
		s.tokenType = env("OIDC_TOKEN_TYPE", "access")

		prov, err := oidc.NewProvider(context.Background(), iss)
		if err != nil {
			log.Fatalf("oidc provider: %v", err)
		}

		if s.tokenType == "id" {
			s.verifier = prov.Verifier(&oidc.Config{ClientID: aud})
			log.Println("OIDC (ID token) enabled", iss, "aud", aud)
		} else {
			var disc struct {
				JWKSURI string `json:"jwks_uri"`
			}
			if err := prov.Claims(&disc); err != nil || disc.JWKSURI == "" {
				log.Fatalf("failed to discover jwks_uri: %v", err)
			}
			jwks, err := keyfunc.Get(disc.JWKSURI, keyfunc.Options{
				RefreshInterval: time.Hour,
				RefreshTimeout:  10 * time.Second,
			})
			if err != nil {
				log.Fatalf("jwks: %v", err)
			}
			s.jwks = jwks
			log.Println("OIDC (access token) enabled", iss, "aud", aud)
		}
	} else {
		log.Println("OIDC disabled")
	}

	if ao := os.Getenv("CORS_ALLOWED_ORIGINS"); ao != "" {
		s.allowedOrigins = splitCSV(ao)
		log.Println("CORS allowed origins:", s.allowedOrigins)
	}

	mux := http.NewServeMux()
	mux.Handle("/token", s.cors(s.auth(http.HandlerFunc(s.handleRoomToken))))
	mux.Handle("/ephemeral", s.cors(s.auth(http.HandlerFunc(s.handleEphemeral))))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Printf("Failed to write health check response: %v", err)
		}
	})

	addr := env("ADDR", ":8080")
	log.Println("token-issuer on", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (s *server) handleRoomToken(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	identity := r.URL.Query().Get("identity")
	if room == "" || identity == "" {
		http.Error(w, "room and identity are required", http.StatusBadRequest)
		return
	}

	tok := token.New(s.tokenKey, s.tokenSecret).
		WithIdentity(identity).
		WithRoom(room).
		WithTTL(s.tokenTTL)
	if name := r.URL.Query().Get("name"); name != "" {
		tok.WithName(name)
	}

	raw, err := tok.JWT()
	if err != nil {
		log.Println("sign error:", err)
		http.Error(w, "sign failed", http.StatusInternalServerError)
		return
	}
	tokensIssued.WithLabelValues("room").Inc()
	if err := json.NewEncoder(w).Encode(RoomTokenResponse{Token: raw, Room: room}); err != nil {
		log.Printf("Failed to encode token response: %v", err)
	}
}

func (s *server) handleEphemeral(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	sessionID, secret, err := webrtc.MintClientSecret(ctx, s.openaiBaseURL, s.openaiKey, s.model, s.voice)
	mintLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Println("mint error:", err)
		http.Error(w, "mint failed", http.StatusBadGateway)
		return
	}
	tokensIssued.WithLabelValues("ephemeral").Inc()
	if err := json.NewEncoder(w).Encode(EphemeralResponse{
		SessionID: sessionID,
		Secret:    secret,
		Model:     s.model,
	}); err != nil {
		log.Printf("Failed to encode ephemeral response: %v", err)
	}
}

// Middleware: OIDC auth
func (s *server) auth(next http.Handler) http.Handler {
	if s.issuer == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimSpace(auth[len("Bearer "):])
		if s.tokenType == "id" {
			if s.verifier == nil {
				http.Error(w, "verifier not initialized", http.StatusInternalServerError)
				return
			}
			if _, err := s.verifier.Verify(r.Context(), raw); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
		} else {
			if s.jwks == nil {
				http.Error(w, "jwks not initialized", http.StatusInternalServerError)
				return
			}
			tok, err := jwt.Parse(raw, s.jwks.Keyfunc, jwt.WithAudience(s.audience), jwt.WithIssuer(s.issuer))
			if err != nil || !tok.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware: CORS
func (s *server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(s.allowedOrigins) == 0 || contains(s.allowedOrigins, origin) || contains(s.allowedOrigins, "*")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// helpers
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing env %s", k)
	}
	return v
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func contains(a []string, v string) bool {
	for _, x := range a {
		if x == v {
			return true
		}
	}
	return false
}
