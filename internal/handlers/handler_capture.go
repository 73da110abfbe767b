package handlers

import (
	"fmt"
	"net/http"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/middlewares"
	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/utils"
)

// POSTSubscriptionHandler records the subscription form of a signed-in user.
func POSTSubscriptionHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	user, ok := ctx.GetUser()
	if !ok {
		reject(ctx, http.StatusUnauthorized, "You must be logged in to subscribe.")
		return
	}

	var req SubscriptionRequest
	if err := decodeRequest(ctx, &req); err != nil {
		rejectRequest(ctx, err, "Subscription Failed:")
		return
	}

	sub := models.Subscription{
		UserID:         user.ID,
		Name:           clean(req.Name),
		Email:          clean(req.Email),
		Phone:          clean(req.Phone),
		Interest:       clean(req.Interest),
		ResumeFilename: clean(req.ResumeFilename),
		Client:         utils.ClientInfo(ctx.Request, middlewares.ClientIP(ctx.Request)),
		CreatedAt:      time.Now().UTC(),
	}

	doc, err := ctx.Storage.Append(ctx, sub.Document())
	if err != nil {
		ctx.Logger.Error("failed to store subscription", "user_id", user.ID, "error", err)
		reject(ctx, http.StatusInternalServerError, "Subscription Failed: Something went wrong, please try again.")
		return
	}
	metrics.DocumentsCaptured.WithLabelValues(models.CollectionSubscriptions).Inc()

	if err := s.CloseModal(modal.Subscribe); err != nil {
		ctx.Logger.Warn("failed to close subscribe modal", "error", err)
	}

	msg := navigation.Success(fmt.Sprintf("Thank you, %s! Your subscription details have been noted. We will contact you soon.", sub.Name))
	s.ShowMessage(msg)

	ctx.Logger.Info("subscription captured", "id", doc.ID, "user_id", user.ID)
	respond(ctx, http.StatusCreated, outcomeAccepted, msg)
}

// POSTContactHandler records a contact message from anyone.
func POSTContactHandler(ctx *middlewares.AppContext) {
	s := loadSession(ctx)

	var req ContactRequest
	if err := decodeRequest(ctx, &req); err != nil {
		rejectRequest(ctx, err, "Message Failed:")
		return
	}

	contact := models.ContactMessage{
		Name:      clean(req.Name),
		Email:     clean(req.Email),
		Message:   clean(req.Message),
		Client:    utils.ClientInfo(ctx.Request, middlewares.ClientIP(ctx.Request)),
		CreatedAt: time.Now().UTC(),
	}
	if user, ok := s.User(); ok {
		contact.UserID = user.ID
	}

	if contact.Message == "" {
		reject(ctx, http.StatusBadRequest, "Message Failed: Please check the following fields: message.")
		return
	}

	doc, err := ctx.Storage.Append(ctx, contact.Document())
	if err != nil {
		ctx.Logger.Error("failed to store contact message", "email", utils.RedactEmail(contact.Email), "error", err)
		reject(ctx, http.StatusInternalServerError, "Message Failed: Something went wrong, please try again.")
		return
	}
	metrics.DocumentsCaptured.WithLabelValues(models.CollectionContacts).Inc()

	if err := s.CloseModal(modal.Contact); err != nil {
		ctx.Logger.Warn("failed to close contact modal", "error", err)
	}

	msg := navigation.Success(fmt.Sprintf("Thank you, %s! Your message has been sent.", contact.Name))
	s.ShowMessage(msg)

	ctx.Logger.Info("contact message captured", "id", doc.ID)
	respond(ctx, http.StatusCreated, outcomeAccepted, msg)
}
