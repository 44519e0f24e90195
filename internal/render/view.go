package render

import (
	"github.com/kalambet/jobassist/internal/contract"
	"github.com/kalambet/jobassist/internal/shell"
)

// Stage is one numbered section of the preparation roadmap.
type Stage struct {
	Number int
	Title  string
	Steps  []contract.RoadmapStep
}

// View is the render model of the page.
type View struct {
	Role     string
	Location string
	Loading  bool
	Error    string
	Result   *contract.Result
	Stages   []Stage
}

// NewView maps shell state onto the page. The error is only shown after a
// failed search and results only when one is present.
func NewView(s shell.State) View {
	v := View{
		Role:     s.Role,
		Location: s.Location,
		Loading:  s.Loading(),
		Result:   s.Result,
	}
	if s.Phase == shell.Failure {
		v.Error = s.Err
	}
	if s.Result != nil {
		v.Stages = []Stage{
			{Number: 1, Title: "Fundamentals", Steps: s.Result.Roadmap.Fundamentals},
			{Number: 2, Title: "Advanced Proficiency", Steps: s.Result.Roadmap.Advanced},
			{Number: 3, Title: "Hands-on Projects", Steps: s.Result.Roadmap.Projects},
		}
	}
	return v
}
