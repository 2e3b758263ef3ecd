// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer sends email through the Mailjet API. The newsletter
// sender and transactional flows depend only on the Mailer interface so
// tests can substitute a fake.
package mailer

import (
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

// Mailer delivers a single email. Send returns once the provider has
// accepted the message; acceptance does not guarantee delivery.
type Mailer interface {
	Send(to, subject, html string) error
}

// Mailjet is a Mailer backed by the Mailjet v3.1 send API.
type Mailjet struct {
	client     *mailjet.Client
	senderName string
	senderAddr string
}

// NewMailjet creates a Mailjet mailer using the given API key pair.
func NewMailjet(publicKey, privateKey, senderName, senderAddr string) *Mailjet {
	return &Mailjet{
		client:     mailjet.NewMailjetClient(publicKey, privateKey),
		senderName: senderName,
		senderAddr: senderAddr,
	}
}

// Send submits one message to Mailjet.
func (m *Mailjet) Send(to, subject, html string) error {
	info := []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: m.senderAddr, Name: m.senderName},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: to}},
		Subject:  subject,
		HTMLPart: html,
	}}

	msgs := mailjet.MessagesV31{Info: info}
	if _, err := m.client.SendMailV31(&msgs); err != nil {
		return fmt.Errorf("mailjet send: %w", err)
	}
	return nil
}
