package dto

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=255"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"max=255"`
	PhoneNumber string `json:"phone_number" binding:"max=32"`
	RoomNo      string `json:"room_no" binding:"max=16"`
	Hostel      string `json:"hostel" binding:"max=64"`
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	RoomNo      string `json:"room_no"`
	Hostel      string `json:"hostel"`
	CreatedAt   string `json:"created_at"`
}
