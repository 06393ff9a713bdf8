package models

// EmployeeRecord is what the external directory knows about an employee.
type EmployeeRecord struct {
	EmployeeNo     string `json:"employeeNo"`
	FullName       string `json:"fullName"`
	DepartmentCode string `json:"departmentCode"`
	JobTitle       string `json:"jobTitle"`
	Email          string `json:"email"`
}

// EmployeeLookup is the outcome of a directory query. The record can only be
// reached through Get, so every caller has to handle the absent case.
type EmployeeLookup struct {
	record EmployeeRecord
	found  bool
}

// Found wraps a resolved record.
func Found(r EmployeeRecord) EmployeeLookup {
	return EmployeeLookup{record: r, found: true}
}

// Absent is the lookup for a missing or unreachable record.
func Absent() EmployeeLookup {
	return EmployeeLookup{}
}

// Get returns the record and whether it was resolved.
func (l EmployeeLookup) Get() (EmployeeRecord, bool) {
	return l.record, l.found
}
