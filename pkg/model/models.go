package model

import (
	"time"

	"github.com/ServiceWeaver/weaver"
)

const (
	DEFAULT_BIO         = "There is no bio"
	DEFAULT_PROFILE_PIC = "https://res.cloudinary.com/dlwyoik86/image/upload/v1764461783/Default_pfp_mejlvx.jpg"
)

type User struct {
	weaver.AutoMarshal
	ID         string    `bson:"_id" json:"_id"`
	FullName   string    `bson:"full_name" json:"fullName"`
	Email      string    `bson:"email" json:"email"`
	Username   string    `bson:"username" json:"username"`
	Password   string    `bson:"password" json:"-"`
	School     string    `bson:"school" json:"school"`
	Bio        string    `bson:"bio" json:"bio"`
	ProfilePic string    `bson:"profile_pic" json:"profilePic"`
	Followers  []string  `bson:"followers" json:"followers"`
	Following  []string  `bson:"following" json:"following"`
	Bookmarks  []string  `bson:"bookmarks" json:"bookmarks"`
	Posts      []string  `bson:"posts" json:"posts"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// Edge names one of the id lists kept on a user document.
type Edge string

const (
	EDGE_FOLLOWERS Edge = "followers"
	EDGE_FOLLOWING Edge = "following"
	EDGE_BOOKMARKS Edge = "bookmarks"
	EDGE_POSTS     Edge = "posts"
)

type Registration struct {
	weaver.AutoMarshal
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	School          string `json:"school"`
}

// ProfileEdit carries the editable profile fields. Empty fields are left unchanged.
type ProfileEdit struct {
	weaver.AutoMarshal
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
}

type Session struct {
	weaver.AutoMarshal
	Token  string `json:"token"`
	UserID string `json:"id"`
}

// Creator is the projection of a user embedded into posts.
type Creator struct {
	weaver.AutoMarshal
	ID         string `json:"_id"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
	School     string `json:"school"`
}

func CreatorOf(u User) Creator {
	return Creator{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		School:     u.School,
	}
}

type Post struct {
	weaver.AutoMarshal
	ID        string    `bson:"_id" json:"_id"`
	CreatorID string    `bson:"creator" json:"creator"`
	Body      string    `bson:"body" json:"body"`
	Image     string    `bson:"image" json:"image"`
	Likes     []string  `bson:"likes" json:"likes"`
	Comments  []string  `bson:"comments" json:"comments"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// PostView is a post with its creator projected in. Comments are only
// filled on the single-post read path.
type PostView struct {
	weaver.AutoMarshal
	ID           string    `json:"_id"`
	Creator      Creator   `json:"creator"`
	Body         string    `json:"body"`
	Image        string    `json:"image"`
	Likes        []string  `json:"likes"`
	Comments     []Comment `json:"comments,omitempty"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ViewOf(p Post, creator Creator) PostView {
	return PostView{
		ID:           p.ID,
		Creator:      creator,
		Body:         p.Body,
		Image:        p.Image,
		Likes:        p.Likes,
		CommentCount: len(p.Comments),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CommentCreator is captured when the comment is written and never refreshed.
type CommentCreator struct {
	weaver.AutoMarshal
	CreatorID    string `bson:"creator_id" json:"creatorId"`
	CreatorName  string `bson:"creator_name" json:"creatorName"`
	CreatorPhoto string `bson:"creator_photo" json:"creatorPhoto"`
}

type Comment struct {
	weaver.AutoMarshal
	ID        string         `bson:"_id" json:"_id"`
	PostID    string         `bson:"post_id" json:"postId"`
	Creator   CommentCreator `bson:"creator" json:"creator"`
	Body      string         `bson:"body" json:"comment"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}

type LastMessage struct {
	weaver.AutoMarshal
	Text     string `bson:"text" json:"text"`
	SenderID string `bson:"sender_id" json:"senderId"`
}

type Conversation struct {
	weaver.AutoMarshal
	ID           string      `bson:"_id" json:"_id"`
	Key          string      `bson:"key" json:"-"`
	Participants []string    `bson:"participants" json:"participants"`
	LastMessage  LastMessage `bson:"last_message" json:"lastMessage"`
	CreatedAt    time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updated_at" json:"updatedAt"`
}

type Participant struct {
	weaver.AutoMarshal
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// ConversationView lists the participants other than the caller.
type ConversationView struct {
	weaver.AutoMarshal
	ID           string        `json:"_id"`
	Participants []Participant `json:"participants"`
	LastMessage  LastMessage   `json:"lastMessage"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type Message struct {
	weaver.AutoMarshal
	ID             string    `bson:"_id" json:"_id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Text           string    `bson:"text" json:"text"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// Page selects a window of a feed ordered newest first. The zero Page
// selects everything. Before and BeforeID are the createdAt and id of the
// last post already seen.
type Page struct {
	weaver.AutoMarshal
	Before   time.Time
	BeforeID string
	Limit    int
}

type MediaKind int

const (
	MEDIA_POST_IMAGE MediaKind = iota // 0
	MEDIA_AVATAR                      // 1
)

// Upload is a file received from a client or read back from the blob host.
type Upload struct {
	weaver.AutoMarshal
	Name        string
	ContentType string
	Data        []byte
}

func (u Upload) Empty() bool {
	return len(u.Data) == 0
}
