package gym

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/coregym/internal/config"
	"github.com/five82/coregym/internal/fetch"
)

// Endpoints are the service URLs the client talks to.
type Endpoints struct {
	SignIn   string
	Register string
	Workouts string
	Bookings string
}

// EndpointsFrom picks the service URLs out of cfg.
func EndpointsFrom(cfg config.Config) Endpoints {
	return Endpoints{
		SignIn:   cfg.SignInURL,
		Register: cfg.RegisterURL,
		Workouts: cfg.WorkoutsURL,
		Bookings: cfg.BookingsURL,
	}
}

// Services builds request clients for the auth, workout and booking
// services. Each call returns a fresh client; a detached client cannot be
// reused, so screens ask for a new one every time they are shown.
type Services struct {
	endpoints Endpoints
	transport fetch.Transport
	logger    zerolog.Logger
	userAgent string
}

// NewServices binds endpoints to a shared transport.
func NewServices(endpoints Endpoints, transport fetch.Transport, logger zerolog.Logger) *Services {
	return &Services{
		endpoints: endpoints,
		transport: transport,
		logger:    logger,
	}
}

// WithUserAgent overrides the User-Agent sent by every client.
func (s *Services) WithUserAgent(ua string) *Services {
	s.userAgent = strings.TrimSpace(ua)
	return s
}

// Endpoints returns the bound URLs.
func (s *Services) Endpoints() Endpoints {
	return s.endpoints
}

func (s *Services) options(component string, extra []fetch.Option) []fetch.Option {
	opts := []fetch.Option{
		fetch.WithTransport(s.transport),
		fetch.WithLogger(s.logger.With().Str("component", component).Logger()),
	}
	if s.userAgent != "" {
		opts = append(opts, fetch.WithUserAgent(s.userAgent))
	}
	return append(opts, extra...)
}

// Workouts returns a GET client for the workout listing. Overlapping
// refreshes never let an older response replace a newer one.
func (s *Services) Workouts(extra ...fetch.Option) *fetch.Client[[]Workout] {
	opts := append(s.options("workouts", nil), fetch.WithLatestOnly())
	return fetch.New[[]Workout](fetch.Endpoint{URL: s.endpoints.Workouts}, append(opts, extra...)...)
}

// SignIn returns a POST client for the sign-in endpoint.
func (s *Services) SignIn(extra ...fetch.Option) *fetch.Client[SignInResult] {
	return fetch.New[SignInResult](fetch.Endpoint{URL: s.endpoints.SignIn, Method: http.MethodPost}, s.options("signin", extra)...)
}

// Register returns a POST client for the registration endpoint.
func (s *Services) Register(extra ...fetch.Option) *fetch.Client[RegisterResult] {
	return fetch.New[RegisterResult](fetch.Endpoint{URL: s.endpoints.Register, Method: http.MethodPost}, s.options("register", extra)...)
}

// Booking returns a POST client for the bookings endpoint. The response
// body is not interpreted.
func (s *Services) Booking(extra ...fetch.Option) *fetch.Client[any] {
	return fetch.New[any](fetch.Endpoint{URL: s.endpoints.Bookings, Method: http.MethodPost}, s.options("booking", extra)...)
}
