// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strconv"

	"go.uber.org/zap"
)

const (
	appName = "provisioning-service"

	levelInfo     = "INFO"
	levelWarn     = "WARN"
	levelCritical = "CRITICAL"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

// SecurityLogger writes OWASP style security events, the event name
// carries comma separated arguments, e.g. "user_deleted:admin-1,user-2".
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) event(level, name string, args ...string) {
	e := name
	for i, a := range args {
		if i == 0 {
			e += ":" + a
			continue
		}
		e += "," + a
	}

	s.l.Info(
		"security event",
		zap.String("type", "security"),
		zap.String("appid", appName),
		zap.String("event", e),
		zap.String("level", level),
	)
}

func (s *SecurityLogger) SystemStartup() {
	s.event(levelWarn, "sys_startup")
}

func (s *SecurityLogger) SystemShutdown() {
	s.event(levelWarn, "sys_shutdown")
}

func (s *SecurityLogger) AuthzFailure(userID, resource string) {
	s.event(levelCritical, "authz_fail", userID, resource)
}

func (s *SecurityLogger) AuthzFailureNotEnoughPermissions(userID, required string) {
	s.event(levelCritical, "authz_fail_not_enough_permissions", userID, required)
}

func (s *SecurityLogger) UserCreated(actorID, userID string) {
	s.event(levelWarn, "user_created", actorID, userID)
}

func (s *SecurityLogger) UserUpdated(actorID, userID string, fields ...string) {
	s.event(levelWarn, "user_updated", append([]string{actorID, userID}, fields...)...)
}

func (s *SecurityLogger) UserDeleted(actorID, userID string) {
	s.event(levelWarn, "user_deleted", actorID, userID)
}

func (s *SecurityLogger) FactorsReset(actorID, userID string, removed int) {
	s.event(levelWarn, "authn_factors_reset", actorID, userID, strconv.Itoa(removed))
}

func (s *SecurityLogger) AdminAction(actorID, action, resource string) {
	s.event(levelInfo, "admin_action", actorID, action, resource)
}
