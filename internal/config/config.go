package config

import (
	"flag"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// CacheMode has the following constants: CacheModeMemory, CacheModeRedis
type CacheMode string

const (
	CacheModeMemory CacheMode = "memory"
	CacheModeRedis  CacheMode = "redis"
)

// MasterKeySource has the following constants: MasterKeySourceEnv, MasterKeySourceVault
type MasterKeySource string

const (
	MasterKeySourceEnv   MasterKeySource = "env"
	MasterKeySourceVault MasterKeySource = "vault"
)

// LeaderElectionMode has the following constants: LeaderElectionModeNone, LeaderElectionModeRaft
type LeaderElectionMode string

const (
	LeaderElectionModeNone LeaderElectionMode = "none"
	LeaderElectionModeRaft LeaderElectionMode = "raft"
)

type SigningAlgorithm string

const (
	SigningAlgorithmRS256 SigningAlgorithm = "RS256"
	SigningAlgorithmEdDSA SigningAlgorithm = "EdDSA"
)

var SupportedSigningAlgorithms = []SigningAlgorithm{
	SigningAlgorithmEdDSA,
	SigningAlgorithmRS256,
}

func IsSupportedSigningAlgorithm(algorithm SigningAlgorithm) bool {
	return slices.Contains(SupportedSigningAlgorithms, algorithm)
}

type ServerConfig struct {
	ExternalUrl    string
	Host           string
	Port           int
	AllowedOrigins []string
}

type PostgresConfig struct {
	Database string
	Host     string
	Port     int
	Username string
	Password string
	SslMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database int
}

type VaultConfig struct {
	Address string
	Token   string
	Mount   string
	Path    string
	Field   string
}

type UpstreamConfig struct {
	AuthorizeUrl   string
	TokenUrl       string
	ClientId       string
	ClientSecret   string
	Scopes         []string
	TimeoutSeconds int
}

func (c UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	Upstream UpstreamConfig

	ReturnToPrefix  string
	DefaultReturnTo string
	ErrorRedirect   string

	// SessionStrategies is the ordered list of session establishment
	// strategies tried on callback.
	SessionStrategies []string

	TransitTtlSeconds     int
	SessionTtlSeconds     int
	AccessTokenTtlSeconds int
}

func (c AuthConfig) TransitTtl() time.Duration {
	return time.Duration(c.TransitTtlSeconds) * time.Second
}

func (c AuthConfig) SessionTtl() time.Duration {
	return time.Duration(c.SessionTtlSeconds) * time.Second
}

func (c AuthConfig) AccessTokenTtl() time.Duration {
	return time.Duration(c.AccessTokenTtlSeconds) * time.Second
}

type KeyStoreConfig struct {
	MasterKey struct {
		Source MasterKeySource
		Env    struct {
			// Key is the base64 encoded 32 byte key encryption key.
			Key string
		}
		Vault VaultConfig
	}
	Rotation struct {
		// GraceSeconds is how long a demoted signing key stays
		// verifiable after rotation. Must exceed the longest
		// access token TTL issued by any tenant.
		GraceSeconds int
		// IntervalSeconds is the age at which the scheduled
		// rotation job replaces a tenant's active signing key.
		IntervalSeconds int
	}
}

func (c KeyStoreConfig) Grace() time.Duration {
	return time.Duration(c.Rotation.GraceSeconds) * time.Second
}

func (c KeyStoreConfig) RotationInterval() time.Duration {
	return time.Duration(c.Rotation.IntervalSeconds) * time.Second
}

type LeaderElectionConfig struct {
	Mode LeaderElectionMode
	Raft RaftConfig
}

type RaftConfig struct {
	Id          string
	InitiatorId string
	Host        string
	Port        int
	Nodes       []RaftNodeConfig
}

type RaftNodeConfig struct {
	Id      string
	Address string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type Config struct {
	Server   ServerConfig
	Database struct {
		Postgres PostgresConfig
	}
	Cache struct {
		Mode  CacheMode
		Redis RedisConfig
	}
	KeyStore       KeyStoreConfig
	Auth           AuthConfig
	RateLimit      RateLimitConfig
	LeaderElection LeaderElectionConfig

	InitialOrganization struct {
		Slug        string
		DisplayName string
		Tenants     []InitialTenant
	}
}

type InitialTenant struct {
	IssuerUrl        string
	HostAlias        string
	Environment      string
	Primary          bool
	SigningAlgorithm SigningAlgorithm
}

var configFilePath string
var environment string
var C Config

func IsProduction() bool {
	return environment == "PRODUCTION"
}

func Init() {
	readFlags()
	readConfigFile()
}

func readFlags() {
	flag.StringVar(&configFilePath, "config", "", "path to the yaml config file")
	flag.StringVar(&environment, "environment", "PRODUCTION", "deployment environment")
	flag.Parse()
}

var k = koanf.New(".")

func readConfigFile() {
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			log.Fatalf("error loading config from file: %v", err)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "EVENTURAS_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "EVENTURAS_")), "_", ".")

			if strings.Contains(v, " ") {
				return k, strings.Split(v, " ")
			}

			return k, v
		},
	}), nil)
	if err != nil {
		log.Fatalf("error loading config from env: %v", err)
	}

	err = k.Unmarshal("", &C)
	if err != nil {
		log.Fatalf("error unmarshalling config: %v", err)
	}

	setDefaultsOrPanic()
}

func setDefaultsOrPanic() {
	setServerDefaultsOrPanic()
	setDatabaseDefaultsOrPanic()
	setCacheDefaultsOrPanic()
	setKeyStoreDefaultsOrPanic()
	setAuthDefaultsOrPanic()
	setRateLimitDefaults()
	setLeaderElectionDefaultsOrPanic()
}

func setServerDefaultsOrPanic() {
	if C.Server.Host == "" {
		C.Server.Host = "0.0.0.0"
	}

	if C.Server.Port == 0 {
		C.Server.Port = 8080
	}

	if C.Server.ExternalUrl == "" {
		if IsProduction() {
			panic("missing server external url")
		}
		C.Server.ExternalUrl = "http://localhost:8080"
	}
}

func setDatabaseDefaultsOrPanic() {
	if C.Database.Postgres.Host == "" {
		if IsProduction() {
			panic("missing postgres host")
		}
		C.Database.Postgres.Host = "localhost"
	}

	if C.Database.Postgres.Port == 0 {
		C.Database.Postgres.Port = 5432
	}

	if C.Database.Postgres.Database == "" {
		C.Database.Postgres.Database = "eventuras_idp"
	}

	if C.Database.Postgres.SslMode == "" {
		if IsProduction() {
			C.Database.Postgres.SslMode = "require"
		} else {
			C.Database.Postgres.SslMode = "disable"
		}
	}
}

func setCacheDefaultsOrPanic() {
	switch C.Cache.Mode {
	case "":
		C.Cache.Mode = CacheModeMemory

	case CacheModeMemory:
		// nothing to do

	case CacheModeRedis:
		setRedisDefaultsOrPanic()

	default:
		panic("cache mode not supported")
	}
}

func setRedisDefaultsOrPanic() {
	if C.Cache.Redis.Host == "" {
		if IsProduction() {
			panic("missing redis host")
		}
		C.Cache.Redis.Host = "localhost"
	}

	if C.Cache.Redis.Port == 0 {
		C.Cache.Redis.Port = 6379
	}
}

func setKeyStoreDefaultsOrPanic() {
	switch C.KeyStore.MasterKey.Source {
	case "", MasterKeySourceEnv:
		C.KeyStore.MasterKey.Source = MasterKeySourceEnv
		if C.KeyStore.MasterKey.Env.Key == "" {
			panic("missing key store master key")
		}

	case MasterKeySourceVault:
		setVaultDefaultsOrPanic()

	default:
		panic("master key source not supported")
	}

	if C.KeyStore.Rotation.GraceSeconds == 0 {
		C.KeyStore.Rotation.GraceSeconds = 24 * 60 * 60
	}

	if C.KeyStore.Rotation.IntervalSeconds == 0 {
		C.KeyStore.Rotation.IntervalSeconds = 30 * 24 * 60 * 60
	}
}

func setVaultDefaultsOrPanic() {
	if C.KeyStore.MasterKey.Vault.Address == "" {
		panic("missing vault address")
	}

	if C.KeyStore.MasterKey.Vault.Token == "" {
		panic("missing vault token")
	}

	if C.KeyStore.MasterKey.Vault.Mount == "" {
		C.KeyStore.MasterKey.Vault.Mount = "secret"
	}

	if C.KeyStore.MasterKey.Vault.Path == "" {
		C.KeyStore.MasterKey.Vault.Path = "eventuras-idp/master-key"
	}

	if C.KeyStore.MasterKey.Vault.Field == "" {
		C.KeyStore.MasterKey.Vault.Field = "key"
	}
}

func setAuthDefaultsOrPanic() {
	if C.Auth.ReturnToPrefix == "" {
		C.Auth.ReturnToPrefix = "/admin"
	}

	if C.Auth.DefaultReturnTo == "" {
		C.Auth.DefaultReturnTo = "/admin"
	}

	if C.Auth.ErrorRedirect == "" {
		C.Auth.ErrorRedirect = "/login/error"
	}

	if len(C.Auth.SessionStrategies) == 0 {
		C.Auth.SessionStrategies = []string{"verified-token", "handoff-cookie"}
	}

	if C.Auth.TransitTtlSeconds == 0 {
		C.Auth.TransitTtlSeconds = 600
	}

	if C.Auth.SessionTtlSeconds == 0 {
		C.Auth.SessionTtlSeconds = int((14 * 24 * time.Hour).Seconds())
	}

	if C.Auth.AccessTokenTtlSeconds == 0 {
		C.Auth.AccessTokenTtlSeconds = int((15 * time.Minute).Seconds())
	}

	if C.Auth.AccessTokenTtlSeconds > C.KeyStore.Rotation.GraceSeconds {
		panic("access token ttl exceeds key rotation grace period")
	}

	if C.Auth.Upstream.AuthorizeUrl == "" {
		if IsProduction() {
			panic("missing upstream authorize url")
		}
		C.Auth.Upstream.AuthorizeUrl = "http://localhost:9090/authorize"
	}

	if C.Auth.Upstream.TokenUrl == "" {
		if IsProduction() {
			panic("missing upstream token url")
		}
		C.Auth.Upstream.TokenUrl = "http://localhost:9090/token"
	}

	if C.Auth.Upstream.ClientId == "" {
		if IsProduction() {
			panic("missing upstream client id")
		}
		C.Auth.Upstream.ClientId = "eventuras-idp"
	}

	if C.Auth.Upstream.TimeoutSeconds == 0 {
		C.Auth.Upstream.TimeoutSeconds = 10
	}

	if len(C.Auth.Upstream.Scopes) == 0 {
		C.Auth.Upstream.Scopes = []string{"openid"}
	}
}

func setRateLimitDefaults() {
	if C.RateLimit.PerMinute == 0 {
		C.RateLimit.PerMinute = 60
	}

	if C.RateLimit.Burst == 0 {
		C.RateLimit.Burst = 10
	}
}

func setLeaderElectionDefaultsOrPanic() {
	switch C.LeaderElection.Mode {
	case "":
		C.LeaderElection.Mode = LeaderElectionModeNone

	case LeaderElectionModeNone:
		// nothing to do

	case LeaderElectionModeRaft:
		if C.LeaderElection.Raft.Id == "" {
			panic("missing raft node id")
		}

		if C.LeaderElection.Raft.Host == "" {
			panic("missing raft host")
		}

		if C.LeaderElection.Raft.Port == 0 {
			panic("missing raft port")
		}

		if len(C.LeaderElection.Raft.Nodes) == 0 {
			panic("missing raft cluster nodes")
		}

	default:
		panic("leader election mode not supported")
	}
}
