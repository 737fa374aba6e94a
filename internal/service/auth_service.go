package service

import (
	"context"
	"strings"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/config"
	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RolAdministrador = "administrador"
	RolCajero        = "cajero"

	tokenAcceso   = "access"
	tokenRefresco = "refresh"
)

type AuthService interface {
	Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, empresaID uint, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, empresaID uint) ([]dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
	cost int
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg, cost: 12}
}

// Registrar creates the Empresa and its first administrator in one tx and
// logs the new user in.
func (s *authService) Registrar(ctx context.Context, req dto.RegistroRequest) (*dto.LoginResponse, error) {
	nombre := strings.TrimSpace(req.EmpresaNombre)
	existe, err := s.repo.ExisteEmpresa(ctx, nombre)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrEmpresaDuplicada
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	empresa := &model.Empresa{Nombre: nombre}
	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          RolAdministrador,
		Activo:       true,
	}
	if err := s.repo.CrearEmpresaConAdmin(ctx, empresa, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsuarioDuplicado
		}
		return nil, err
	}
	user.Empresa = empresa
	return s.emitir(user, uuid.NewString())
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil || !user.Activo {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	// Each login opens a new cart scope.
	return s.emitir(user, uuid.NewString())
}

// Refresh keeps the sid of the original login, so the cart survives.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != tokenRefresco {
		return nil, ErrTokenInvalido
	}
	uid, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrTokenInvalido
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		sid = uuid.NewString()
	}

	user, err := s.repo.FindByID(ctx, uint(uid))
	if err != nil || !user.Activo {
		return nil, ErrTokenInvalido
	}
	return s.emitir(user, sid)
}

func (s *authService) CrearUsuario(ctx context.Context, empresaID uint, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		EmpresaID:    empresaID,
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrUsuarioDuplicado
		}
		return nil, err
	}
	r := usuarioToResponse(user)
	return &r, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, empresaID uint) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.ListByEmpresa(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) emitir(user *model.Usuario, sid string) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, sid, tokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, sid, tokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, sid, typ string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    user.ID,
		"empresa_id": user.EmpresaID,
		"username":   user.Username,
		"rol":        user.Rol,
		"sid":        sid,
		"typ":        typ,
		"exp":        now.Add(duration).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	r := dto.UsuarioResponse{
		ID:        u.ID,
		EmpresaID: u.EmpresaID,
		Username:  u.Username,
		Nombre:    u.Nombre,
		Email:     u.Email,
		Rol:       u.Rol,
		Activo:    u.Activo,
	}
	if u.Empresa != nil {
		r.Empresa = u.Empresa.Nombre
	}
	return r
}
