package holders

// student_id / faculty_id may be given explicitly (imports, seeds); 0 means auto.
type CreateStudentRequest struct {
	StudentID  uint64  `json:"student_id"`
	Name       string  `json:"name" binding:"required,max=100"`
	Department *string `json:"department,omitempty" binding:"omitempty,max=100"`
	Year       *int    `json:"year,omitempty" binding:"omitempty,min=1,max=10"`
	Contact    *string `json:"contact,omitempty" binding:"omitempty,max=15"`
	Email      *string `json:"email,omitempty" binding:"omitempty,email,max=100"`
}

type CreateFacultyRequest struct {
	FacultyID   uint64  `json:"faculty_id"`
	Name        string  `json:"name" binding:"required,max=100"`
	Department  *string `json:"department,omitempty" binding:"omitempty,max=100"`
	Designation *string `json:"designation,omitempty" binding:"omitempty,max=100"`
	Contact     *string `json:"contact,omitempty" binding:"omitempty,max=15"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email,max=100"`
}
