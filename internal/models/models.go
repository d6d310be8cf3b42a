package models

import "time"

// PublicationType distinguishes the kinds of creative works shared on Lienzo.
type PublicationType string

const (
	TypePhotography  PublicationType = "PHOTOGRAPHY"
	TypeIllustration PublicationType = "ILLUSTRATION"
	TypeText         PublicationType = "TEXT"
)

// Author is the denormalized author snapshot embedded in publications and comments.
type Author struct {
	UserID            int64  `json:"userId"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	Role              string `json:"role"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// ImageRef points at one uploaded image belonging to a publication.
type ImageRef struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// Tag labels a publication. Tags are created server-side on first use.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Place is the geotag attached to a publication, resolved from OpenStreetMap.
type Place struct {
	OSMID     int64   `json:"osmId"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Publication is a shared creative work as returned by the listing and detail endpoints.
type Publication struct {
	ID               int64           `json:"id"`
	Description      string          `json:"description"`
	Author           Author          `json:"author"`
	HeartsCount      int             `json:"heartsCount"`
	CommentsCount    int             `json:"commentsCount"`
	LikedByMe        bool            `json:"likedByMe,omitempty"`
	SavedByMe        bool            `json:"savedByMe,omitempty"`
	Moderated        bool            `json:"moderated,omitempty"`
	ContentWarning   bool            `json:"contentWarning"`
	MachineGenerated bool            `json:"machineGenerated"`
	ManuallyVerified bool            `json:"manuallyVerified,omitempty"`
	CreationDate     string          `json:"creationDate"`
	Images           []ImageRef      `json:"images"`
	Tags             []Tag           `json:"tags"`
	Place            *Place          `json:"place,omitempty"`
	Type             PublicationType `json:"pubType"`
}

// CreatedAtTime parses the server's creation timestamp, returning the zero
// time when the value is absent or malformed.
func (p Publication) CreatedAtTime() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreationDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreatePublication is the JSON part of the multipart create/update payload.
type CreatePublication struct {
	Description      string          `json:"description,omitempty"`
	ContentWarning   bool            `json:"contentWarning"`
	MachineGenerated bool            `json:"machineGenerated"`
	Type             PublicationType `json:"pubType"`
	Tags             []string        `json:"tags,omitempty"`
	OSMID            int64           `json:"osmId,omitempty"`
	OSMType          string          `json:"osmType,omitempty"`
	HideCleanImage   bool            `json:"hideCleanImage,omitempty"`
}

// PublicUser is the lightweight public profile used in listings and follow graphs.
type PublicUser struct {
	UserID            int64  `json:"userId"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName"`
	Role              string `json:"role"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// UserDetails extends PublicUser with profile text and follow counters.
type UserDetails struct {
	PublicUser
	Description    string `json:"description,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
	Email          string `json:"email,omitempty"`
	ShowExplicit   bool   `json:"showExplicit,omitempty"`
}

// UpdateUser is the patch payload for profile edits.
type UpdateUser struct {
	Username     string `json:"username,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Description  string `json:"description,omitempty"`
	Email        string `json:"email,omitempty"`
	ShowExplicit *bool  `json:"showExplicit,omitempty"`
}

// Comment is a threaded comment on a publication.
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    Author    `json:"author"`
	CreatedAt string    `json:"createdAt"`
	Replies   []Comment `json:"replies,omitempty"`
}

// CreateComment is the payload for posting a comment or reply.
type CreateComment struct {
	Text     string `json:"text"`
	ParentID int64  `json:"parentId,omitempty"`
}

// NotificationType enumerates the events the platform notifies about.
type NotificationType string

const (
	NotifyCommentOnPost    NotificationType = "COMMENT_ON_POST"
	NotifyReplyToComment   NotificationType = "REPLY_TO_COMMENT"
	NotifyHeartOnPost      NotificationType = "HEART_ON_POST"
	NotifyContentModerated NotificationType = "CONTENT_MODERATED"
	NotifyWelcome          NotificationType = "WELCOME"
	NotifyNewFollower      NotificationType = "NEW_FOLLOWER"
)

// Notification is a single inbox entry for the authenticated user.
type Notification struct {
	ID          int64            `json:"id"`
	Recipient   PublicUser       `json:"recipient"`
	Actor       PublicUser       `json:"actor"`
	Type        NotificationType `json:"type"`
	ReferenceID int64            `json:"referenceId"`
	Message     string           `json:"message"`
	CreatedAt   string           `json:"createdAt"`
	Read        bool             `json:"read"`
}

// ReportReason enumerates the accepted grounds for reporting content.
type ReportReason string

const (
	ReasonSpam                 ReportReason = "SPAM"
	ReasonInappropriateContent ReportReason = "INAPPROPRIATE_CONTENT"
	ReasonHarassment           ReportReason = "HARASSMENT"
	ReasonCopyright            ReportReason = "COPYRIGHT"
	ReasonUnmarkedAI           ReportReason = "UNMARKED_AI"
	ReasonOther                ReportReason = "OTHER"
)

// CreateReport is the payload for flagging a publication to moderators.
type CreateReport struct {
	PublicationID int64        `json:"publicationId"`
	Reason        ReportReason `json:"reason"`
	Details       string       `json:"details,omitempty"`
}

// Report is a moderation report as listed in the admin queue.
type Report struct {
	ID            int64        `json:"id"`
	PublicationID int64        `json:"publicationId"`
	Reporter      PublicUser   `json:"reporter"`
	Reason        ReportReason `json:"reason"`
	Details       string       `json:"details,omitempty"`
	Status        string       `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	CreatedAt     string       `json:"createdAt"`
}

// Appeal is a user appeal against a moderation decision.
type Appeal struct {
	ID            int64      `json:"id"`
	PublicationID int64      `json:"publicationId"`
	Appellant     PublicUser `json:"appellant"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	AdminNotes    string     `json:"adminNotes,omitempty"`
	CreatedAt     string     `json:"createdAt"`
}

// FailedTask is a stuck background job (place resolution, AI screening)
// exposed through the admin queues for manual retry or dismissal.
type FailedTask struct {
	ID            int64  `json:"id"`
	PublicationID int64  `json:"publicationId"`
	Kind          string `json:"kind"`
	Error         string `json:"error"`
	FailedAt      string `json:"failedAt"`
}

// PlaceSummary is a map pin with an aggregate post count.
type PlaceSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PostCount int     `json:"postCount"`
}

const (
	// MaxImagesPerPost caps the number of image parts accepted by the create endpoint.
	MaxImagesPerPost = 4
	// MaxDescriptionLength caps the description accepted by the create endpoint.
	MaxDescriptionLength = 256
	// MaxTagsPerPost caps the number of tags accepted by the create endpoint.
	MaxTagsPerPost = 30
)
