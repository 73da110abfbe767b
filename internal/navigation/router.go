package navigation

import "fmt"

type Request struct {
	Page      string
	Protected bool
	DataID    int
}

type Outcome string

const (
	OutcomeShown    Outcome = "shown"
	OutcomeDiverted Outcome = "diverted"
	OutcomeFallback Outcome = "fallback"
	OutcomeDenied   Outcome = "denied"
)

type Result struct {
	Page    Page    `json:"page"`
	Outcome Outcome `json:"outcome"`
}

// Navigate moves the session to the requested page. Unknown pages fall back to
// home. A guest asking for a protected page stays where they are, with the
// auth modal opened in login mode and the request remembered as the pending
// redirect.
func Navigate(s *Session, req Request) Result {
	page, ok := ParsePage(req.Page)
	if !ok {
		s.showPage(DefaultPage)
		return Result{Page: DefaultPage, Outcome: OutcomeFallback}
	}

	if (req.Protected || page.Protected()) && !s.IsAuthenticated() {
		mode := AuthLogin
		if page.AdminOnly() {
			mode = AuthAdminLogin
		}
		s.setPending(&Redirect{Page: page, DataID: req.DataID})
		s.setAuthMode(mode)
		s.ShowMessage(Error(fmt.Sprintf("You must be logged in to view the %s page.", page.Title())))
		return Result{Page: s.page, Outcome: OutcomeDiverted}
	}

	if page.AdminOnly() && !s.IsAdmin() {
		s.showPage(DefaultPage)
		s.ShowMessage(Error(fmt.Sprintf("You do not have access to the %s.", page.Title())))
		return Result{Page: DefaultPage, Outcome: OutcomeDenied}
	}

	if page.CarriesData() {
		s.setData(page, req.DataID)
	}
	s.showPage(page)
	return Result{Page: page, Outcome: OutcomeShown}
}
