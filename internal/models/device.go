package models

import "time"

// UnknownEmail is the placeholder clients send when they have no identity for the device.
// It triggers a lookup against the users collection by IP address.
const UnknownEmail = "Unknown"

// DeviceInfoInput is the POST /api/device-info payload.
// Every field is optional; absent fields are stored as null.
type DeviceInfoInput struct {
	Email      *string `json:"email"`
	Browser    *string `json:"browser"`
	OS         *string `json:"os"`
	DeviceType *string `json:"deviceType"`
	IPAddress  *string `json:"ipAddress"`
}

// DeviceInfo is a stored device record.
// (email, browser, os, deviceType, ipAddress) identifies a record; timestamp is not part of it.
type DeviceInfo struct {
	ID         string    `json:"id" db:"id"`
	Email      *string   `json:"email" db:"email"`
	Browser    *string   `json:"browser" db:"browser"`
	OS         *string   `json:"os" db:"os"`
	DeviceType *string   `json:"deviceType" db:"device_type"`
	IPAddress  *string   `json:"ipAddress" db:"ip_address"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// User is a registration record owned by another service. It is only ever read here.
type User struct {
	Email     *string
	IPAddress *string
	Timestamp time.Time
}

// MessageResponse is the body of every non-list API response.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeviceInfoListResponse is returned by GET /api/device-info.
type DeviceInfoListResponse struct {
	Message string       `json:"message"`
	Data    []DeviceInfo `json:"data"`
}

// IsUnknownEmail reports whether email is the sentinel value.
func IsUnknownEmail(email *string) bool {
	return email != nil && *email == UnknownEmail
}
