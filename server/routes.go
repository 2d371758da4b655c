package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Account routes
	RouteSignup = "/auth/signup"
	RouteLogin  = "/auth/login"
	RouteLogout = "/auth/logout"

	// Session renewal and status
	RouteReissue = "/auth/reissue"
	RouteSession = "/auth/session"

	// External identity provider
	RouteOAuthLogin    = "/auth/oauth/login"
	RouteOAuthCallback = "/auth/oauth/callback"

	// Phone verification side channel
	RoutePhoneKey     = "/auth/phone/key"
	RoutePhoneSubmit  = "/auth/phone"
	RoutePhoneConfirm = "/auth/phone/confirm"
)

// RefreshTokenHeader is the custom header a refresh token is presented
// in. Keeping it out of the Authorization header keeps refresh tokens
// away from default credential-forwarding paths.
const RefreshTokenHeader = "Refresh-Token"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("POST "+RouteReissue, ChainMiddleware(s.ReissueHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteSession, ChainMiddleware(s.SessionStatusHandler(), append(s.APIMiddleware(), s.RequireAuth())...))

	if s.deps.Identity != nil {
		s.RegisterRouteFunc("GET "+RouteOAuthLogin, ChainMiddleware(s.OAuthLoginHandler(), s.APIMiddleware()...))
		s.RegisterRouteFunc("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))
	}

	s.RegisterRouteFunc("GET "+RoutePhoneKey, ChainMiddleware(s.PhoneKeyHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RoutePhoneSubmit, ChainMiddleware(s.PhoneSubmitHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
	s.RegisterRouteFunc("POST "+RoutePhoneConfirm, ChainMiddleware(s.PhoneConfirmHandler(), append(s.APIMiddleware(), s.RequireAuth())...))
}
