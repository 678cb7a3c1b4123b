package commitment

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommitmentSuite struct {
	suite.Suite
	salt []byte
}

func TestCommitmentSuite(t *testing.T) {
	suite.Run(t, new(CommitmentSuite))
}

func (s *CommitmentSuite) SetupTest() {
	var err error
	s.salt, err = GenerateSalt()
	s.Require().NoError(err)
	s.Require().Len(s.salt, SaltLen)
}

func (s *CommitmentSuite) TestDigestIsDeterministic() {
	s.Run("Given equal inputs, When hashed twice, Then digests are equal", func() {
		a := Digest(25, 18, s.salt)
		b := Digest(25, 18, s.salt)
		s.Equal(a, b)
	})
}

func (s *CommitmentSuite) TestDigestBindsEveryInput() {
	base := Digest(25, 18, s.salt)

	s.Run("Given a different age, Then the digest changes", func() {
		s.NotEqual(base, Digest(26, 18, s.salt))
	})

	s.Run("Given a different threshold, Then the digest changes", func() {
		s.NotEqual(base, Digest(25, 21, s.salt))
	})

	s.Run("Given a different salt, Then the digest changes", func() {
		other := make([]byte, SaltLen)
		copy(other, s.salt)
		other[0] ^= 0xff
		s.NotEqual(base, Digest(25, 18, other))
	})
}

func (s *CommitmentSuite) TestDigestSeparatesAgeAndThreshold() {
	// Fixed-width serialization means (age=1, threshold=256) can never
	// collide with (age=256, threshold=1) or any other boundary shuffle.
	s.NotEqual(Digest(1, 256, s.salt), Digest(256, 1, s.salt))
}

func (s *CommitmentSuite) TestMatches() {
	d := Digest(25, 18, s.salt)

	s.Run("Given the committed inputs, Then Matches succeeds", func() {
		s.True(Matches(d[:], 25, 18, s.salt))
	})

	s.Run("Given a different age, Then Matches fails", func() {
		s.False(Matches(d[:], 24, 18, s.salt))
	})

	s.Run("Given a truncated digest, Then Matches fails", func() {
		s.False(Matches(d[:16], 25, 18, s.salt))
	})
}

func (s *CommitmentSuite) TestDigestRoundTrip() {
	d := Digest(30, 21, s.salt)
	encoded := EncodeDigest(d[:])

	decoded, err := DecodeDigest(encoded)
	s.Require().NoError(err)
	s.Equal(d[:], decoded)
}

func (s *CommitmentSuite) TestDecodeDigestRejectsBadInput() {
	s.Run("Given non-hex input, Then decode fails", func() {
		_, err := DecodeDigest("zz")
		s.Error(err)
	})

	s.Run("Given a short digest, Then decode fails", func() {
		_, err := DecodeDigest("deadbeef")
		s.Error(err)
	})
}

func (s *CommitmentSuite) TestSaltRoundTrip() {
	encoded := EncodeSalt(s.salt)
	decoded, err := DecodeSalt(encoded)
	s.Require().NoError(err)
	s.Equal(s.salt, decoded)
}

func (s *CommitmentSuite) TestDecodeSaltRejectsWrongLength() {
	_, err := DecodeSalt("deadbeef")
	s.Error(err)
}

func (s *CommitmentSuite) TestGenerateSaltIsUnique() {
	a, err := GenerateSalt()
	s.Require().NoError(err)
	b, err := GenerateSalt()
	s.Require().NoError(err)
	s.NotEqual(a, b)
}
