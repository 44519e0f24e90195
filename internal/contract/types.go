package contract

// JobListing is one opportunity returned by the backend.
type JobListing struct {
	Company string `json:"company"`
	Title   string `json:"title"`
	URL     string `json:"url" validate:"required"`
}

// Video is a learning resource attached to a roadmap step.
type Video struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RoadmapStep is one topic of the learning roadmap. Videos keep the order the
// backend returned them in.
type RoadmapStep struct {
	Topic  string  `json:"topic"`
	Videos []Video `json:"youtube_videos"`
}

type Overview struct {
	Summary          string   `json:"summary"`
	Responsibilities []string `json:"responsibilities"`
}

type Skills struct {
	Technical    []string `json:"technical"`
	NonTechnical []string `json:"non_technical"`
	Tools        []string `json:"tools"`
}

type Roadmap struct {
	Fundamentals    []RoadmapStep `json:"fundamentals"`
	Advanced        []RoadmapStep `json:"advanced"`
	Projects        []RoadmapStep `json:"projects"`
	InterviewTopics []string      `json:"interview_topics"`
}

// Result is the job-market intelligence for one role, as found inside the
// response envelope(s).
type Result struct {
	Role      string       `json:"role"`
	Location  string       `json:"location"`
	TotalJobs int          `json:"total_jobs"`
	Jobs      []JobListing `json:"jobs" validate:"required,dive"`
	Overview  Overview     `json:"job_overview"`
	Skills    Skills       `json:"job_required_skills"`
	Roadmap   Roadmap      `json:"preparation_roadmap"`
}
