package vdm

// VesselIdentity ties the operator-internal course number to the public
// course number and the resolved display name. The internal number is the
// primary dedup and matching key - two segments sharing it are the same
// physical vessel even if the official number differs.
type VesselIdentity struct {
	InternalCourseNumber string `json:"internal_course_number"`
	OfficialCourseNumber string `json:"official_course_number"`
	DisplayName          string `json:"display_name"`
}
