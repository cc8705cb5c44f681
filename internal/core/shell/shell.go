// Package shell maps client URL paths to views and applies the navigation
// rules shared by every client session.
package shell

import (
	"net/url"
	"strings"
)

// View is a top-level screen of the client application.
type View string

const (
	ViewLanding        View = "landing"
	ViewAuth           View = "auth"
	ViewDashboard      View = "dashboard"
	ViewPlanner        View = "planner"
	ViewPlan           View = "plan"
	ViewShared         View = "shared"
	ViewPricing        View = "pricing"
	ViewCheckout       View = "checkout"
	ViewPaymentSuccess View = "payment-success"
	ViewSettings       View = "settings"
	ViewBlog           View = "blog"
	ViewBlogPost       View = "blog-post"
	ViewTestimonials   View = "testimonials"
	ViewPrivacy        View = "privacy"
	ViewTerms          View = "terms"
)

// Route is a resolved client location.
type Route struct {
	View      View   `json:"view"`
	ContentID string `json:"contentId,omitempty"`
	// PaymentReference is set on the post-payment redirect.
	PaymentReference string `json:"paymentReference,omitempty"`
}

var staticViews = map[string]View{
	"":             ViewLanding,
	"login":        ViewAuth,
	"signup":       ViewAuth,
	"auth":         ViewAuth,
	"dashboard":    ViewDashboard,
	"planner":      ViewPlanner,
	"create":       ViewPlanner,
	"pricing":      ViewPricing,
	"checkout":     ViewCheckout,
	"settings":     ViewSettings,
	"blog":         ViewBlog,
	"testimonials": ViewTestimonials,
	"privacy":      ViewPrivacy,
	"terms":        ViewTerms,
}

var protected = map[View]bool{
	ViewDashboard:      true,
	ViewPlanner:        true,
	ViewPlan:           true,
	ViewCheckout:       true,
	ViewPaymentSuccess: true,
	ViewSettings:       true,
}

// Resolve maps a client path, optionally carrying a query string, to a Route.
// Unknown paths resolve to the landing view.
func Resolve(path string) Route {
	u, err := url.Parse(path)
	if err != nil {
		return Route{View: ViewLanding}
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	head := strings.ToLower(segments[0])

	if len(segments) == 2 && segments[1] != "" {
		switch head {
		case "share", "shared":
			return Route{View: ViewShared, ContentID: segments[1]}
		case "plans", "plan":
			return Route{View: ViewPlan, ContentID: segments[1]}
		case "blog":
			return Route{View: ViewBlogPost, ContentID: segments[1]}
		case "payment":
			if strings.EqualFold(segments[1], "success") {
				return Route{View: ViewPaymentSuccess, PaymentReference: u.Query().Get("reference")}
			}
		}
		return Route{View: ViewLanding}
	}
	if len(segments) > 1 {
		return Route{View: ViewLanding}
	}
	if v, ok := staticViews[head]; ok {
		return Route{View: v}
	}
	return Route{View: ViewLanding}
}

// Path is the inverse of Resolve for canonical locations.
func Path(r Route) string {
	switch r.View {
	case ViewLanding:
		return "/"
	case ViewShared:
		return "/share/" + url.PathEscape(r.ContentID)
	case ViewPlan:
		return "/plans/" + url.PathEscape(r.ContentID)
	case ViewBlogPost:
		return "/blog/" + url.PathEscape(r.ContentID)
	case ViewPaymentSuccess:
		return "/payment/success?reference=" + url.QueryEscape(r.PaymentReference)
	}
	return "/" + string(r.View)
}

// Protected reports whether v requires a signed-in user.
func Protected(v View) bool { return protected[v] }

// Guard redirects anonymous clients away from protected views.
func Guard(v View, authenticated bool) View {
	if !authenticated && Protected(v) {
		return ViewAuth
	}
	return v
}

// AfterSignIn is the view shown once a client signs in. A checkout chosen
// before signing in takes precedence over the dashboard.
func AfterSignIn(pendingCheckout bool) View {
	if pendingCheckout {
		return ViewCheckout
	}
	return ViewDashboard
}
