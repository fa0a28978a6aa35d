package profiles

import "mime/multipart"

// UpdateAvatarPayload is the multipart avatar upload. The binder puts the
// uploaded files into FormFiles keyed by field name.
type UpdateAvatarPayload struct {
	FormFiles map[string]*multipart.FileHeader `form:"-" json:"-"`
}

// AvatarResponse carries the absolute URL of the stored avatar.
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}
