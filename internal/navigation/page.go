package navigation

type Page string

const (
	PageHome            Page = "home"
	PageProjects        Page = "projects"
	PageProjectDetails  Page = "projectDetails"
	PageDetails         Page = "details"
	PageWorkshops       Page = "workshops"
	PageWorkshopDetails Page = "workshopDetails"
	PageLabs            Page = "labs"
	PageResources       Page = "resources"
	PageAdminDashboard  Page = "adminDashboard"
)

const DefaultPage = PageHome

type pageInfo struct {
	title     string
	protected bool
	adminOnly bool
	hasData   bool
}

var pages = map[Page]pageInfo{
	PageHome:            {title: "Home"},
	PageProjects:        {title: "Projects", protected: true},
	PageProjectDetails:  {title: "Project Details", hasData: true},
	PageDetails:         {title: "Details", hasData: true},
	PageWorkshops:       {title: "Workshops"},
	PageWorkshopDetails: {title: "Workshop Details", hasData: true},
	PageLabs:            {title: "Our Labs"},
	PageResources:       {title: "Resources"},
	PageAdminDashboard:  {title: "Admin Dashboard", protected: true, adminOnly: true},
}

func ParsePage(name string) (Page, bool) {
	p := Page(name)
	_, ok := pages[p]
	return p, ok
}

func (p Page) Valid() bool {
	_, ok := pages[p]
	return ok
}

func (p Page) Title() string {
	return pages[p].title
}

// Protected reports whether the page always requires an authenticated principal,
// regardless of the flag sent by the caller.
func (p Page) Protected() bool {
	return pages[p].protected
}

func (p Page) AdminOnly() bool {
	return pages[p].adminOnly
}

// CarriesData reports whether the page is parameterised by a data identifier.
func (p Page) CarriesData() bool {
	return pages[p].hasData
}

type NavLink struct {
	Name      string `json:"name"`
	Page      Page   `json:"page"`
	Protected bool   `json:"protected"`
}

var navLinks = []NavLink{
	{Name: "Home", Page: PageHome},
	{Name: "Projects", Page: PageProjects, Protected: true},
	{Name: "Workshops", Page: PageWorkshops},
	{Name: "Our Labs", Page: PageLabs},
	{Name: "Resources", Page: PageResources},
}

func NavLinks() []NavLink {
	return append([]NavLink(nil), navLinks...)
}
