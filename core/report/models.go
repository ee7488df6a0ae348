package report

// UserActivity is a per-user dashboard of activity counts.
type UserActivity struct {
	Username       string `json:"user"`
	CoursesJoined  int    `json:"total_courses_joined"`
	CommentsPosted int    `json:"total_comments"`
}

// CourseAnalytics is a per-course engagement summary. All counts are
// recomputed from the store on every call.
type CourseAnalytics struct {
	CourseName            string  `json:"course_name"`
	TotalStudents         int     `json:"total_students"`
	TotalContents         int     `json:"total_contents"`
	TotalComments         int     `json:"total_comments"`
	AvgCommentsPerContent float64 `json:"avg_comments_per_content"`
}
