package handlers

import (
	"techrobotics-site/internal/content"
	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/presence"
)

const (
	AuthButtonLogin  = "LOGIN"
	AuthButtonSignup = "SIGN UP"
	AuthButtonLogout = "LOGOUT"

	NarrationStartLabel = "Read Content Aloud (TTS)"
	NarrationStopLabel  = "Stop Narration"
)

type NavLinkView struct {
	Name      string          `json:"name"`
	Page      navigation.Page `json:"page"`
	Protected bool            `json:"protected"`
	Active    bool            `json:"active"`
}

type NavbarView struct {
	Links         []NavLinkView `json:"links"`
	Authenticated bool          `json:"authenticated"`
	IsAdmin       bool          `json:"is_admin"`
	Welcome       string        `json:"welcome,omitempty"`
	AuthButton    string        `json:"auth_button"`
	ShowSubscribe bool          `json:"show_subscribe"`
}

type NarrationView struct {
	Speaking bool   `json:"speaking"`
	Mode     string `json:"mode"`
	Label    string `json:"label"`
}

// PageView carries only the content the current page renders.
type PageView struct {
	Name          navigation.Page     `json:"name"`
	Title         string              `json:"title"`
	Slides        []models.Slide      `json:"slides,omitempty"`
	CarouselIndex int                 `json:"carousel_index"`
	Projects      []models.Project    `json:"projects,omitempty"`
	Project       *models.Project     `json:"project,omitempty"`
	Workshops     []models.Workshop   `json:"workshops,omitempty"`
	Workshop      *models.Workshop    `json:"workshop,omitempty"`
	Slide         *models.Slide       `json:"slide,omitempty"`
	Details       *content.Details    `json:"details,omitempty"`
	ComingSoon    *content.ComingSoon `json:"coming_soon,omitempty"`
	Narration     *NarrationView      `json:"narration,omitempty"`
}

type ModalView struct {
	Visible   bool            `json:"visible"`
	Animation modal.Animation `json:"animation,omitempty"`
}

type AuthModalView struct {
	ModalView
	Mode            navigation.AuthMode  `json:"mode"`
	PendingRedirect *navigation.Redirect `json:"pending_redirect,omitempty"`
}

type FooterView struct {
	Links []models.SocialLink `json:"links"`
}

// View is everything the client needs to render the current session.
type View struct {
	Navbar  NavbarView               `json:"navbar"`
	Page    PageView                 `json:"page"`
	Auth    AuthModalView            `json:"auth"`
	Modals  map[modal.Name]ModalView `json:"modals"`
	Message *navigation.Message      `json:"message,omitempty"`
	Footer  FooterView               `json:"footer"`
}

// StateResponse answers every transition: what happened plus the resulting view.
type StateResponse struct {
	Outcome string              `json:"outcome,omitempty"`
	Page    navigation.Page     `json:"page"`
	Message *navigation.Message `json:"message,omitempty"`
	View    View                `json:"view"`
}

type NavigateRequest struct {
	Page      string `json:"page" validate:"required,max=64"`
	Protected bool   `json:"protected"`
	DataID    int    `json:"data_id" validate:"gte=0"`
}

type CarouselSelectRequest struct {
	Index int `json:"index" validate:"gte=0"`
}

type AuthModalRequest struct {
	IsLogin bool `json:"is_login"`
	IsAdmin bool `json:"is_admin"`
}

type AuthSubmitRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=128"`
	Username string `json:"username" validate:"max=64"`
}

type SubscriptionRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Interest       string `json:"interest" validate:"omitempty,max=500"`
	ResumeFilename string `json:"resume_filename" validate:"omitempty,max=255"`
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}

type AuthStatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	Role          models.Role  `json:"role"`
	User          *models.User `json:"user,omitempty"`
}

type DashboardResponse struct {
	ActiveUsers   []presence.ActiveUser `json:"active_users"`
	Accounts      int                   `json:"accounts"`
	Subscriptions int                   `json:"subscriptions"`
	Contacts      int                   `json:"contacts"`
}
