package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are core error primitives used at every trust boundary. Unit tests
// ensure invariants like "wrapped domain errors preserve original code" and
// "numeric codes never drift" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "no record for subject"}
		s.Equal("no record for subject", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotFound}
		s.Equal("verification_not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestNumericContract() {
	// The 100..107 numbering is the external contract; a renumbering here is a
	// breaking change for every existing caller.
	s.Run("protocol codes map to their fixed numbers", func() {
		s.Equal(100, CodeNotAuthorized.Numeric())
		s.Equal(101, CodeNotFound.Numeric())
		s.Equal(102, CodeAlreadyVerified.Numeric())
		s.Equal(103, CodeInvalidProof.Numeric())
		s.Equal(104, CodeVerifierNotAuthorized.Numeric())
		s.Equal(105, CodeExpired.Numeric())
		s.Equal(106, CodeInvalidInput.Numeric())
		s.Equal(107, CodeTransferFailed.Numeric())
	})

	s.Run("internal codes have no wire identity", func() {
		s.Equal(0, CodeInternal.Numeric())
		s.Equal(0, CodeUnavailable.Numeric())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("database connection failed")
		err := &Error{Code: CodeInternal, Message: "service error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeInternal, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotFound, Message: "no commitment"}
		err2 := &Error{Code: CodeNotFound, Message: "no attestation"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := &Error{Code: CodeInternal}
		s.False(err1.Is(err2))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeNotFound, Message: "original"}
		wrapped := &Error{Code: CodeInternal, Message: "wrapped", Err: inner}
		target := &Error{Code: CodeNotFound}
		s.True(errors.Is(wrapped, target))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("wrapping a domain error keeps the original code", func() {
		inner := New(CodeInvalidProof, "digest mismatch")
		wrapped := Wrap(inner, CodeInternal, "proof check failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeInvalidProof, domainErr.Code)
		s.Equal("proof check failed", domainErr.Message)
	})

	s.Run("wrapping a plain error applies the given code", func() {
		wrapped := Wrap(errors.New("boom"), CodeTransferFailed, "transfer aborted")
		s.True(HasCode(wrapped, CodeTransferFailed))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	err := New(CodeAlreadyVerified, "commitment already revealed")
	s.True(HasCode(err, CodeAlreadyVerified))
	s.False(HasCode(err, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeAlreadyVerified))
	s.False(HasCode(nil, CodeAlreadyVerified))
}
