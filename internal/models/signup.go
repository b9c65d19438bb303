package models

// MemberSignup is a member's request to join a gym. It is sent as multipart form data
// together with a face video and stays pending until a gym owner decides on it.
type MemberSignup struct {
	GymID       string
	Username    string
	Email       string
	Password    string
	HeightCm    float64
	WeightKg    OptFloat
	FirstName   string
	LastName    string
	Phone       string
	Gender      string
	DateOfBirth string // YYYY-MM-DD, optional
}

// Gym-owner signup modes.
const (
	OwnerJoinExisting = "join_existing"
	OwnerCreateNew    = "create_new"
)

// GymLocation is where a newly created gym is.
type GymLocation struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// GymOwnerSignup registers a gym owner. Exactly one of GymID (join an existing gym) or
// GymName with Location (create a new gym) is set.
type GymOwnerSignup struct {
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	Password string       `json:"password"`
	GymID    string       `json:"gym_id,omitempty"`
	GymName  string       `json:"gym_name,omitempty"`
	Location *GymLocation `json:"location_data,omitempty"`
}

// Mode reports which signup flow the request uses.
func (s GymOwnerSignup) Mode() string {
	if s.GymID != "" {
		return OwnerJoinExisting
	}
	return OwnerCreateNew
}

// SignupResponse is the body the signup endpoints answer with.
type SignupResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
}
