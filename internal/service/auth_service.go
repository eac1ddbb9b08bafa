package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Hoblayerta/LENSNOMICS/internal/dto"
	"github.com/Hoblayerta/LENSNOMICS/internal/model"
	"github.com/Hoblayerta/LENSNOMICS/internal/repository"
	"github.com/Hoblayerta/LENSNOMICS/pkg/apperror"
	"github.com/Hoblayerta/LENSNOMICS/pkg/lens"
	"github.com/Hoblayerta/LENSNOMICS/pkg/logger"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	nonceTTL = 5 * time.Minute
	tokenTTL = 24 * time.Hour
)

// AuthService authenticates wallet owners: a one-time nonce is issued per
// address, the owner signs it with personal_sign, and a valid signature
// yields a JWT whose subject is the wallet address. Accounts are created on
// first successful verification.
type AuthService interface {
	Nonce(ctx context.Context, address string) (*dto.NonceResponse, error)
	Verify(ctx context.Context, req dto.VerifyRequest) (*dto.VerifyResponse, error)
	GetUser(ctx context.Context, address string) (*dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	rdb       *redis.Client
	directory lens.Directory
	secret    string
}

func NewAuthService(users repository.UserRepository, rdb *redis.Client, directory lens.Directory, secret string) AuthService {
	return &authService{
		users:     users,
		rdb:       rdb,
		directory: directory,
		secret:    secret,
	}
}

func signMessage(nonce string) string {
	return fmt.Sprintf("Sign this message to authenticate with LENSNOMICS.\n\nNonce: %s", nonce)
}

func nonceKey(address string) string {
	return "auth:nonce:" + strings.ToLower(address)
}

func (s *authService) Nonce(ctx context.Context, address string) (*dto.NonceResponse, error) {
	if s.rdb == nil {
		return nil, apperror.ErrExternalUnavailable
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	nonce := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, nonceKey(address), nonce, nonceTTL).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrExternalUnavailable, err)
	}

	return &dto.NonceResponse{
		Nonce:   nonce,
		Message: signMessage(nonce),
	}, nil
}

func (s *authService) Verify(ctx context.Context, req dto.VerifyRequest) (*dto.VerifyResponse, error) {
	if s.rdb == nil {
		return nil, apperror.ErrExternalUnavailable
	}
	nonce, err := s.rdb.Get(ctx, nonceKey(req.Address)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: nonce expired or never issued", apperror.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrExternalUnavailable, err)
	}

	if err := verifySignature(req.Address, signMessage(nonce), req.Signature); err != nil {
		return nil, err
	}

	// Each nonce authenticates exactly once.
	s.rdb.Del(ctx, nonceKey(req.Address))

	address := strings.ToLower(req.Address)
	user, err := s.users.GetOrCreateByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	s.resolveLensHandle(ctx, user)

	token, err := s.issueToken(address)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyResponse{
		Token: token,
		User:  ToUserResponse(user),
	}, nil
}

// verifySignature recovers the signer of an eth_sign style message and
// compares it to the claimed address.
func verifySignature(address, message, signature string) error {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != 65 {
		return fmt.Errorf("%w: malformed signature", apperror.ErrUnauthorized)
	}
	// Wallets return V as 27/28; secp256k1 recovery expects 0/1.
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("%w: signature recovery failed", apperror.ErrUnauthorized)
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), address) {
		return fmt.Errorf("%w: signer does not match address", apperror.ErrUnauthorized)
	}
	return nil
}

func (s *authService) issueToken(address string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   address,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// resolveLensHandle fills in the Lens handle the first time an address with
// a profile authenticates. Lookup failures only log.
func (s *authService) resolveLensHandle(ctx context.Context, user *model.User) {
	if s.directory == nil || user.LensHandle != nil {
		return
	}
	profile, err := s.directory.ResolveProfile(ctx, user.Address)
	if err != nil {
		logger.Sugar.Debugw("lens profile lookup failed", "address", user.Address, "error", err)
		return
	}
	if profile == nil || profile.Handle == "" {
		return
	}
	if err := s.users.SetLensHandle(ctx, user.ID, profile.Handle); err != nil {
		logger.Sugar.Warnw("lens handle persist failed", "address", user.Address, "error", err)
		return
	}
	user.LensHandle = &profile.Handle
}

func (s *authService) GetUser(ctx context.Context, address string) (*dto.UserResponse, error) {
	user, err := s.users.FindByAddress(ctx, strings.ToLower(address))
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ToUserResponse shapes a user for API responses.
func ToUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                user.ID.String(),
		Address:           user.Address,
		LensHandle:        user.LensHandle,
		TokenBalance:      user.TokenBalance.String(),
		AchievementPoints: user.AchievementPoints,
		XP:                user.XP,
		Level:             user.Level,
	}
}
