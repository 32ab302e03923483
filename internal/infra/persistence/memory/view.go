package memory

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) CurrentUser() (User, bool) {
	if v.state.session == nil {
		return User{}, false
	}
	return *v.state.session, true
}

func (v transactionView) ListStudents() []Student {
	return cloneSlice(v.state.students, cloneStudent)
}

func (v transactionView) ListInternships() []Internship {
	return cloneSlice(v.state.internships, cloneInternship)
}

func (v transactionView) ListApplications() []Application {
	return cloneSlice(v.state.applications, cloneApplication)
}

func (v transactionView) ListLogbookEntries() []LogbookEntry {
	return cloneSlice(v.state.logbook, cloneLogbookEntry)
}

func (v transactionView) ListNotifications() []Notification {
	return cloneSlice(v.state.notifications, cloneNotification)
}

func (v transactionView) FindStudent(id string) (Student, bool) {
	for _, st := range v.state.students {
		if st.ID == id {
			return cloneStudent(st), true
		}
	}
	return Student{}, false
}

func (v transactionView) FindInternship(id string) (Internship, bool) {
	for _, in := range v.state.internships {
		if in.ID == id {
			return cloneInternship(in), true
		}
	}
	return Internship{}, false
}

func (v transactionView) FindApplication(id string) (Application, bool) {
	for _, app := range v.state.applications {
		if app.ID == id {
			return app, true
		}
	}
	return Application{}, false
}

func cloneSlice[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

func cloneStudent(s Student) Student {
	cp := s
	cp.Skills = cloneStrings(s.Skills)
	if s.Employer != nil {
		employer := *s.Employer
		cp.Employer = &employer
	}
	return cp
}

func cloneInternship(i Internship) Internship {
	cp := i
	cp.Requirements = cloneStrings(i.Requirements)
	return cp
}

func cloneLogbookEntry(e LogbookEntry) LogbookEntry {
	cp := e
	cp.SkillsLearned = cloneStrings(e.SkillsLearned)
	return cp
}

func cloneApplication(a Application) Application    { return a }
func cloneNotification(n Notification) Notification { return n }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
