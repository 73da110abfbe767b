package models

import (
	"time"
)

const (
	CollectionSubscriptions = "subscriptions"
	CollectionContacts      = "contacts"
)

// Document is a schemaless record appended to a named collection.
type Document struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Fields     map[string]string `json:"fields"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ClientInfo describes the browser a record was captured from.
type ClientInfo struct {
	IP      string `json:"ip,omitempty"`
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Device  string `json:"device,omitempty"`
}

type Subscription struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Interest       string     `json:"interest,omitempty"`
	ResumeFilename string     `json:"resume_filename,omitempty"`
	Client         ClientInfo `json:"client"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (s *Subscription) Document() Document {
	return Document{
		ID:         s.ID,
		Collection: CollectionSubscriptions,
		CreatedAt:  s.CreatedAt,
		Fields: withClient(map[string]string{
			"user_id":         s.UserID,
			"name":            s.Name,
			"email":           s.Email,
			"phone":           s.Phone,
			"interest":        s.Interest,
			"resume_filename": s.ResumeFilename,
		}, s.Client),
	}
}

func SubscriptionFromDocument(doc Document) Subscription {
	return Subscription{
		ID:             doc.ID,
		UserID:         doc.Fields["user_id"],
		Name:           doc.Fields["name"],
		Email:          doc.Fields["email"],
		Phone:          doc.Fields["phone"],
		Interest:       doc.Fields["interest"],
		ResumeFilename: doc.Fields["resume_filename"],
		Client:         clientFrom(doc.Fields),
		CreatedAt:      doc.CreatedAt,
	}
}

type ContactMessage struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Client    ClientInfo `json:"client"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *ContactMessage) Document() Document {
	return Document{
		ID:         c.ID,
		Collection: CollectionContacts,
		CreatedAt:  c.CreatedAt,
		Fields: withClient(map[string]string{
			"user_id": c.UserID,
			"name":    c.Name,
			"email":   c.Email,
			"message": c.Message,
		}, c.Client),
	}
}

func ContactMessageFromDocument(doc Document) ContactMessage {
	return ContactMessage{
		ID:        doc.ID,
		UserID:    doc.Fields["user_id"],
		Name:      doc.Fields["name"],
		Email:     doc.Fields["email"],
		Message:   doc.Fields["message"],
		Client:    clientFrom(doc.Fields),
		CreatedAt: doc.CreatedAt,
	}
}

func withClient(fields map[string]string, client ClientInfo) map[string]string {
	fields["client_ip"] = client.IP
	fields["client_browser"] = client.Browser
	fields["client_os"] = client.OS
	fields["client_device"] = client.Device
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	return fields
}

func clientFrom(fields map[string]string) ClientInfo {
	return ClientInfo{
		IP:      fields["client_ip"],
		Browser: fields["client_browser"],
		OS:      fields["client_os"],
		Device:  fields["client_device"],
	}
}
