package models

// Project mirrors the portfolio API's project document.
type Project struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"longDescription,omitempty"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate,omitempty"`
	Status           string   `json:"status"`
	Technologies     []string `json:"technologies"`
	Category         string   `json:"category"`
	Client           string   `json:"client,omitempty"`
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
	Impact           string   `json:"impact,omitempty"`
	Images           []string `json:"images,omitempty"`
	VideoURL         string   `json:"videoUrl,omitempty"`
	GithubURL        string   `json:"githubUrl,omitempty"`
	LiveURL          string   `json:"liveUrl,omitempty"`
	Featured         bool     `json:"featured"`
	Order            int      `json:"order"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// ProjectPage is the paginated listing returned by GET /projects.
type ProjectPage struct {
	Projects   []Project `json:"projects"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

// RecentProjects is returned by GET /projects/recent.
type RecentProjects struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
	Limit    int       `json:"limit"`
}

// ProjectQuery holds the optional filters for a listing call.
// Zero values are omitted from the request.
type ProjectQuery struct {
	Featured   *bool
	Category   string
	Status     string
	Technology string
	Year       int
	Search     string
	Page       int
	Limit      int
}

// ProjectFields is a partial project document used for create and update calls.
type ProjectFields map[string]any

// Technologies collects the technology lists of every project.
func Technologies(projects []Project) [][]string {
	out := make([][]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Technologies)
	}
	return out
}
