package service

import (
	"errors"

	dErrors "auditlink/pkg/domain-errors"
	"auditlink/pkg/platform/sentinel"
)

// wrapStoreErr translates store sentinels. Errors that already carry a
// domain code pass through unchanged.
func wrapStoreErr(err error, notFoundMsg, internalMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func wrapClaimErr(err error) error {
	return wrapStoreErr(err, "claim not found", "failed to load claim")
}

func wrapNotificationErr(err error) error {
	return wrapStoreErr(err, "notification not found", "failed to load notification")
}
