package lettresdk

// ErrorResponse is the JSON error body of every API route. Error carries the
// taxonomy code; ErrorDescription is human-readable.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// SendMailRequest asks for a sender-confirmation email. With Renvoi set, ID
// is required and a fresh token is minted; otherwise Token is used as-is.
// Field names follow the product's public wire format.
type SendMailRequest struct {
	Email  string `json:"email"`
	Nom    string `json:"nom,omitempty"`
	Token  string `json:"token,omitempty"`
	Renvoi bool   `json:"renvoi,omitempty"`
	ID     string `json:"id,omitempty"`
}

type SendMailResponse struct {
	Success bool `json:"success"`
}

// ConsumeTokenRequest finalizes a verified sender by destroying its token.
type ConsumeTokenRequest struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	FamilleID string `json:"famille_id"`
}

type ConsumeTokenResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}

// CreateSenderRequest registers a new sender address for verification.
type CreateSenderRequest struct {
	Email string `json:"email"`
	Nom   string `json:"nom,omitempty"`
}

// SenderView is the API projection of a sender.
type SenderView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nom       string `json:"nom,omitempty"`
	Statut    string `json:"statut"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // unix seconds of token expiry
}

// RecipientView is the uniform projection over members and pending
// invitations used by the role manager.
type RecipientView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Kind  string `json:"kind"`
}

// UpdateRoleRequest assigns a new role to a recipient.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// InviteRequest creates a pending invitation for an email address.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InvitationView is the API projection of a pending invitation.
type InvitationView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

// AcceptInvitationRequest redeems an invite token into a member account.
type AcceptInvitationRequest struct {
	Token     string `json:"token"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
}

type AcceptInvitationResponse struct {
	MemberID string `json:"member_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// RecoveryRequest asks for a password-reset email. The response never
// reveals whether the address has an account.
type RecoveryRequest struct {
	Email string `json:"email"`
}

// NewPasswordRequest finalizes a password reset with the hashed token from
// the emailed link.
type NewPasswordRequest struct {
	TokenHash string `json:"token_hash"`
	Password  string `json:"password"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is shared by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
