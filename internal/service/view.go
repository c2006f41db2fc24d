package service

import (
	"time"

	"doctransfer/internal/model"
)

// PersonView is the client-facing identity triple.
type PersonView struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// DocumentView is the per-document projection returned by ListFor.
type DocumentView struct {
	ShareID          string       `json:"share_id"`
	UploadedAt       time.Time    `json:"uploaded_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	DisplayName      string       `json:"display_name"`
	Size             int64        `json:"size"`
	Owner            PersonView   `json:"owner"`
	SharedWithOthers bool         `json:"shared_with_others"`
	SharedWithYou    bool         `json:"shared_with_you"`
	People           []PersonView `json:"people"`
}

func newPersonView(p model.Person) PersonView {
	return PersonView{Email: p.Email, Name: p.Name, Surname: p.Surname}
}

func newDocumentView(doc model.Document, viewerEmail string) DocumentView {
	people := make([]PersonView, 0, len(doc.People))
	for _, p := range doc.People {
		people = append(people, newPersonView(p))
	}
	return DocumentView{
		ShareID:          doc.ShareID,
		UploadedAt:       doc.UploadedAt,
		ExpiresAt:        doc.ExpiresAt,
		DisplayName:      doc.DisplayName,
		Size:             doc.Size,
		Owner:            newPersonView(doc.OwnerPerson()),
		SharedWithOthers: doc.IsShared(),
		SharedWithYou:    doc.SharedWithEmail(viewerEmail),
		People:           people,
	}
}
