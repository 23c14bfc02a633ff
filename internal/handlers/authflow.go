package handlers

import (
	"net/http"
	"strings"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/internal/logging"
	"github.com/losol/eventuras-idp/internal/metrics"
	"github.com/losol/eventuras-idp/internal/middlewares"
	"github.com/losol/eventuras-idp/internal/services"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"
)

// BeginLoginFlow starts the upstream authorization code flow. It stores
// a transit record server side, mirrors it into short-lived cookies and
// redirects the browser to the upstream authorize endpoint.
func BeginLoginFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := middlewares.GetTenant(ctx)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	returnTo := sanitizeReturnTo(r.URL.Query().Get("returnTo"))

	scope := middlewares.GetScope(ctx)
	transitService := ioc.GetDependency[services.TransitService](scope)
	transitState, err := transitService.Begin(ctx, returnTo)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	maxAge := config.C.Auth.TransitTtlSeconds
	setTransitCookie(w, services.TransitStateCookieName, transitState.State, maxAge)
	setTransitCookie(w, services.TransitVerifierCookieName, transitState.CodeVerifier, maxAge)
	setTransitCookie(w, services.TransitReturnToCookieName, transitState.ReturnTo, maxAge)

	metrics.FlowInitiations.Inc()

	upstreamService := ioc.GetDependency[services.UpstreamService](scope)
	http.Redirect(w, r, upstreamService.AuthCodeUrl(*tenant, transitState.State, transitState.CodeVerifier), http.StatusFound)
}

// AuthCallback finishes the flow: it checks the returned state against
// both the browser cookie and the server side transit record, exchanges
// the code, verifies the resulting access token against the tenant's
// own keys and hands the assertion to the session bridge.
func AuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := middlewares.GetTenant(ctx)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	stateCookie, err := r.Cookie(services.TransitStateCookieName)
	clearTransitCookies(w)

	queryState := r.URL.Query().Get("state")
	if err != nil || queryState == "" || stateCookie.Value != queryState {
		failFlow(w, r, "state_mismatch", "state cookie does not match callback state")
		return
	}

	scope := middlewares.GetScope(ctx)
	transitService := ioc.GetDependency[services.TransitService](scope)
	transitState, err := transitService.Consume(ctx, queryState)
	if err != nil {
		failFlow(w, r, "state_mismatch", "consuming transit state: %v", err)
		return
	}

	if upstreamError := r.URL.Query().Get("error"); upstreamError != "" {
		failFlow(w, r, "code_exchange", "upstream returned error %q", upstreamError)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		failFlow(w, r, "code_exchange", "callback without code")
		return
	}

	upstreamService := ioc.GetDependency[services.UpstreamService](scope)
	token, err := upstreamService.Exchange(ctx, *tenant, code, transitState.CodeVerifier)
	if err != nil {
		failFlow(w, r, "code_exchange", "exchanging code: %v", err)
		return
	}

	tokenService := ioc.GetDependency[services.TokenService](scope)
	verifiedToken, err := tokenService.Verify(ctx, token.AccessToken)
	if err != nil {
		failFlow(w, r, "session_rejected", "verifying upstream access token: %v", err)
		return
	}

	assertion := services.Assertion{
		VerifiedToken: verifiedToken,
	}
	if handoffCookie, err := r.Cookie(services.HandoffCookieName); err == nil {
		assertion.HandoffToken = handoffCookie.Value
	}

	bridge := ioc.GetDependency[services.SessionBridge](scope)
	_, err = bridge.Establish(w, r, *tenant, assertion)
	if err != nil {
		failFlow(w, r, "session_rejected", "establishing session: %v", err)
		return
	}

	// the handoff cookie is single use, the session cookie replaces it
	if assertion.HandoffToken != "" {
		setTransitCookie(w, services.HandoffCookieName, "", -1)
	}

	returnTo := transitState.ReturnTo
	if returnTo == "" {
		returnTo = config.C.Auth.DefaultReturnTo
	}

	http.Redirect(w, r, returnTo, http.StatusFound)
}

// Logout deletes the session row and clears the session cookie.
func Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := middlewares.GetTenant(ctx)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = middlewares.DeleteSession(w, r, tenant.Id)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// sanitizeReturnTo keeps redirects on-site. Absolute urls, protocol
// relative urls and paths outside the allowed prefix all collapse to
// the default.
func sanitizeReturnTo(returnTo string) string {
	if returnTo == "" {
		return config.C.Auth.DefaultReturnTo
	}

	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		return config.C.Auth.DefaultReturnTo
	}

	if !strings.HasPrefix(returnTo, config.C.Auth.ReturnToPrefix) {
		return config.C.Auth.DefaultReturnTo
	}

	return returnTo
}

func failFlow(w http.ResponseWriter, r *http.Request, reason string, format string, args ...any) {
	logging.Logger.Warnf("authorization flow failed ("+reason+"): "+format, args...)
	metrics.FlowFailures.WithLabelValues(reason).Inc()
	http.Redirect(w, r, config.C.Auth.ErrorRedirect, http.StatusFound)
}

func setTransitCookie(w http.ResponseWriter, name string, value string, maxAge int) {
	cookie := http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   config.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}

func clearTransitCookies(w http.ResponseWriter) {
	setTransitCookie(w, services.TransitStateCookieName, "", -1)
	setTransitCookie(w, services.TransitVerifierCookieName, "", -1)
	setTransitCookie(w, services.TransitReturnToCookieName, "", -1)
}
