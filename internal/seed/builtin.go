package seed

import (
	"context"

	"placementhub/internal/infra/persistence/memory"
	"placementhub/pkg/domain"
)

type builtinSource struct{}

// Builtin returns the demo dataset shipped with the binary.
func Builtin() Source { return builtinSource{} }

func (builtinSource) Name() string { return "builtin" }

func (builtinSource) Load(ctx context.Context) (memory.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return memory.Snapshot{}, err
	}
	return DemoSnapshot(), nil
}

func avatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + name
}

func ptr(s string) *string { return &s }

// DemoSnapshot builds a fresh copy of the demo dataset.
func DemoSnapshot() memory.Snapshot {
	return memory.Snapshot{
		Students: []domain.Student{
			{ID: "s1", Name: "Aditi Sharma", Email: "aditi.sharma@college.edu", Department: "Computer Science", Year: "4th Year", GPA: 9.2,
				Status: domain.StudentStatusInterning, Skills: []string{"React", "TypeScript", "Node.js"}, Employer: ptr("TechCorp Solutions"), Avatar: avatar("Aditi+Sharma")},
			{ID: "s2", Name: "Rahul Verma", Email: "rahul.verma@college.edu", Department: "Information Technology", Year: "3rd Year", GPA: 8.5,
				Status: domain.StudentStatusSeeking, Skills: []string{"Python", "SQL", "Pandas"}, Avatar: avatar("Rahul+Verma")},
			{ID: "s3", Name: "Priya Patel", Email: "priya.patel@college.edu", Department: "Electronics", Year: "4th Year", GPA: 8.9,
				Status: domain.StudentStatusPlaced, Skills: []string{"Embedded C", "IoT"}, Employer: ptr("Circuit Labs"), Avatar: avatar("Priya+Patel")},
			{ID: "s4", Name: "Arjun Singh", Email: "arjun.singh@college.edu", Department: "Mechanical", Year: "3rd Year", GPA: 7.8,
				Status: domain.StudentStatusSeeking, Skills: []string{"AutoCAD", "SolidWorks"}, Avatar: avatar("Arjun+Singh")},
			{ID: "s5", Name: "Sneha Gupta", Email: "sneha.gupta@college.edu", Department: "Computer Science", Year: "4th Year", GPA: 9.5,
				Status: domain.StudentStatusSeeking, Skills: []string{"Java", "Spring Boot", "AWS"}, Avatar: avatar("Sneha+Gupta")},
		},
		Internships: []domain.Internship{
			{ID: "1", Title: "Frontend Developer Intern", Company: "TechCorp Solutions", Type: "Remote", Location: "Bengaluru",
				Stipend: "₹15,000/month", Duration: "3 months", Description: "Build responsive dashboards with React.",
				Requirements: []string{"React", "TypeScript", "CSS"}, PostedDate: "2023-10-15", Applicants: 45, Logo: avatar("TechCorp")},
			{ID: "2", Title: "Data Science Intern", Company: "DataMinds Analytics", Type: "Hybrid", Location: "Pune",
				Stipend: "₹20,000/month", Duration: "6 months", Description: "Model placement outcomes from historical data.",
				Requirements: []string{"Python", "Pandas", "Statistics"}, PostedDate: "2023-10-18", Applicants: 32, Logo: avatar("DataMinds")},
			{ID: "3", Title: "Embedded Systems Intern", Company: "Circuit Labs", Type: "On-site", Location: "Hyderabad",
				Stipend: "₹12,000/month", Duration: "4 months", Description: "Firmware testing for sensor boards.",
				Requirements: []string{"C", "Microcontrollers"}, PostedDate: "2023-10-20", Applicants: 12, Logo: avatar("Circuit+Labs")},
		},
		Applications: []domain.Application{
			{ID: "a1", InternshipID: "1", StudentID: "s1", Status: domain.ApplicationStatusShortlisted, AppliedDate: "2023-10-20",
				StudentName: "Aditi Sharma", StudentAvatar: avatar("Aditi+Sharma"), StudentGPA: 9.2, JobTitle: "Frontend Developer Intern"},
			{ID: "a2", InternshipID: "2", StudentID: "s2", Status: domain.ApplicationStatusApplied, AppliedDate: "2023-10-22",
				StudentName: "Rahul Verma", StudentAvatar: avatar("Rahul+Verma"), StudentGPA: 8.5, JobTitle: "Data Science Intern"},
			{ID: "a3", InternshipID: "1", StudentID: "s5", Status: domain.ApplicationStatusApplied, AppliedDate: "2023-10-23",
				StudentName: "Sneha Gupta", StudentAvatar: avatar("Sneha+Gupta"), StudentGPA: 9.5, JobTitle: "Frontend Developer Intern"},
		},
		LogbookEntries: []domain.LogbookEntry{
			{ID: "l1", Date: "2023-11-03", Activity: "Implemented login form validation", Hours: 6,
				SkillsLearned: []string{"React Hook Form", "Zod"}, Status: domain.LogbookStatusPending},
			{ID: "l2", Date: "2023-11-02", Activity: "Wrote unit tests for dashboard widgets", Hours: 5,
				SkillsLearned: []string{"Jest"}, Status: domain.LogbookStatusApproved},
			{ID: "l3", Date: "2023-11-01", Activity: "Onboarding and codebase walkthrough", Hours: 4,
				SkillsLearned: []string{"Git"}, Status: domain.LogbookStatusApproved},
		},
		Notifications: []domain.Notification{
			{ID: "n1", Title: "Application Shortlisted", Message: "You have been shortlisted for Frontend Developer Intern at TechCorp Solutions.",
				Date: "2 hours ago", Type: domain.NotificationSuccess},
			{ID: "n2", Title: "Logbook Reminder", Message: "Submit this week's logbook entries before Friday.",
				Date: "1 day ago", Type: domain.NotificationWarning},
			{ID: "n3", Title: "Welcome", Message: "Your placement profile is ready.",
				Date: "3 days ago", Read: true, Type: domain.NotificationInfo},
		},
	}
}
