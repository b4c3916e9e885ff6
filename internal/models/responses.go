package models

import "time"

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ArticleCount int       `json:"articleCount"`
	CommentCount int       `json:"commentCount"`
}

// ThemeResponse is the public shape of a theme. IsSubscribed is only ever
// true for an authenticated caller.
type ThemeResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ArticleCount int    `json:"articleCount"`
	IsSubscribed bool   `json:"isSubscribed"`
}

// ArticleResponse is the public shape of an article.
type ArticleResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	AuthorID       uint      `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	ThemeID        uint      `json:"themeId"`
	ThemeName      string    `json:"themeName"`
	CommentCount   int       `json:"commentCount"`
}

// CommentResponse is the public shape of a comment.
type CommentResponse struct {
	ID             uint      `json:"id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	AuthorID       uint      `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	ArticleID      uint      `json:"articleId"`
	ArticleTitle   string    `json:"articleTitle"`
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// SubscriptionResponse reports whether a subscribe/unsubscribe changed state.
type SubscriptionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		ArticleCount: u.ArticleCount,
		CommentCount: u.CommentCount,
	}
}

func NewThemeResponse(t *Theme, subscribed bool) ThemeResponse {
	return ThemeResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		ArticleCount: t.ArticleCount,
		IsSubscribed: subscribed,
	}
}

func NewArticleResponse(a *Article) ArticleResponse {
	return ArticleResponse{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		CreatedAt:      a.CreatedAt,
		AuthorID:       a.AuthorID,
		AuthorUsername: a.Author.Username,
		ThemeID:        a.ThemeID,
		ThemeName:      a.Theme.Name,
		CommentCount:   a.CommentCount,
	}
}

func NewCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:             c.ID,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt,
		AuthorID:       c.AuthorID,
		AuthorUsername: c.Author.Username,
		ArticleID:      c.ArticleID,
		ArticleTitle:   c.Article.Title,
	}
}

// NewArticleResponses maps a slice, never returning nil so it encodes as [].
func NewArticleResponses(articles []*Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, NewArticleResponse(a))
	}
	return out
}

// NewCommentResponses maps a slice, never returning nil so it encodes as [].
func NewCommentResponses(comments []*Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c))
	}
	return out
}
