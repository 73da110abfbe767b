package handlers

import (
	"strings"

	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/navigation"
)

var viewModals = []modal.Name{modal.Subscribe, modal.Contact, modal.Message}

func buildView(ctx *middlewares.AppContext, s *navigation.Session) View {
	modals := s.Modals()

	view := View{
		Navbar: buildNavbar(s),
		Page:   buildPage(ctx, s),
		Auth: AuthModalView{
			ModalView: modalView(modals.State(modal.Auth)),
			Mode:      s.AuthMode(),
		},
		Modals: make(map[modal.Name]ModalView, len(viewModals)),
		Footer: FooterView{Links: ctx.Catalogue.FooterLinks(sessionEmail(s))},
	}

	if r, ok := s.PendingRedirect(); ok {
		view.Auth.PendingRedirect = &r
	}

	for _, name := range viewModals {
		view.Modals[name] = modalView(modals.State(name))
	}

	if modals.Visible(modal.Message) {
		view.Message = s.Message()
	}

	return view
}

func modalView(m modal.Modal) ModalView {
	return ModalView{Visible: m.Visible, Animation: m.Animation}
}

func sessionEmail(s *navigation.Session) string {
	if user, ok := s.User(); ok {
		return user.Email
	}
	return ""
}

func buildNavbar(s *navigation.Session) NavbarView {
	links := navigation.NavLinks()
	navbar := NavbarView{Links: make([]NavLinkView, 0, len(links))}

	for _, link := range links {
		navbar.Links = append(navbar.Links, NavLinkView{
			Name:      link.Name,
			Page:      link.Page,
			Protected: link.Protected,
			Active:    link.Page == s.Page(),
		})
	}

	user, ok := s.User()
	if !ok {
		navbar.AuthButton = AuthButtonLogin
		if s.AuthMode() == navigation.AuthSignup {
			navbar.AuthButton = AuthButtonSignup
		}
		return navbar
	}

	name := user.Username
	if name == "" {
		name = "Guest"
	}
	navbar.Authenticated = true
	navbar.IsAdmin = s.IsAdmin()
	navbar.Welcome = "WELCOME " + strings.ToUpper(name)
	navbar.AuthButton = AuthButtonLogout
	navbar.ShowSubscribe = true
	return navbar
}

func buildPage(ctx *middlewares.AppContext, s *navigation.Session) PageView {
	catalogue := ctx.Catalogue
	page := PageView{
		Name:          s.Page(),
		Title:         s.Page().Title(),
		CarouselIndex: s.CarouselIndex(),
	}

	switch s.Page() {
	case navigation.PageHome:
		page.Slides = catalogue.Slides
	case navigation.PageProjects:
		page.Projects = catalogue.Projects
	case navigation.PageProjectDetails:
		project := catalogue.Project(s.ProjectID())
		page.Project = &project
	case navigation.PageWorkshops:
		page.Workshops = catalogue.Workshops
	case navigation.PageWorkshopDetails:
		workshop := catalogue.Workshop(s.WorkshopID())
		page.Workshop = &workshop
	case navigation.PageDetails:
		slide := catalogue.Slide(s.SlideID())
		details := catalogue.Details
		page.Slide = &slide
		page.Details = &details
		page.Narration = narrationView(ctx, s)
	case navigation.PageLabs, navigation.PageResources:
		if soon, ok := catalogue.ComingSoon[string(s.Page())]; ok {
			page.ComingSoon = &soon
		}
	}

	return page
}

func narrationView(ctx *middlewares.AppContext, s *navigation.Session) *NarrationView {
	view := &NarrationView{
		Speaking: s.Speaking(),
		Mode:     ctx.Narrator.Mode(),
		Label:    NarrationStartLabel,
	}
	if view.Speaking {
		view.Label = NarrationStopLabel
	}
	return view
}
