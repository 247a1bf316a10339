package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/palemoky/codenames-arena/internal/apperrors"
)

// TokenIssuer 签发和校验会话令牌（HS256），令牌绑定房间号和玩家 ID
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer 创建令牌签发器
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue 签发令牌
func (ti *TokenIssuer) Issue(roomCode, playerID string) (string, error) {
	now := ti.now()
	claims := jwt.MapClaims{
		"room":   roomCode,
		"player": playerID,
		"iat":    now.Unix(),
		"exp":    now.Add(ti.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify 校验令牌签名、有效期以及房间号和玩家 ID
func (ti *TokenIssuer) Verify(tokenString, roomCode, playerID string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	room, _ := claims["room"].(string)
	player, _ := claims["player"].(string)
	if room != roomCode || player != playerID {
		return apperrors.ErrUnauthorized
	}
	return nil
}
