// Package store regroupe les accès aux bases : ScyllaDB pour les
// documents persistés (users, carts, orders), Redis pour le cache et
// l'état éphémère, Elasticsearch pour l'indexation des commandes et
// MinIO pour l'archivage des factures. Le Store est injecté dans les
// handlers — pas de singleton global.
package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type Store struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	InvoiceBucket string
}

// Connect initialise toutes les connexions. Toute erreur ici est fatale
// pour le processus — démarrer sans base serait pire que de s'arrêter.
func Connect(ctx context.Context) (*Store, error) {
	s := &Store{}

	session, err := connectScylla()
	if err != nil {
		return nil, fmt.Errorf("échec initialisation ScyllaDB: %w", err)
	}
	s.Scylla = session

	if err := s.connectRedis(ctx); err != nil {
		session.Close()
		return nil, err
	}

	if err := s.connectElastic(); err != nil {
		session.Close()
		return nil, err
	}

	if err := s.connectMinIO(ctx); err != nil {
		session.Close()
		return nil, err
	}

	log.Println("✅ Toutes les bases de données sont connectées")
	return s, nil
}

func loadScyllaConfig() ScyllaConfig {
	return ScyllaConfig{
		Hosts:       strings.Split(os.Getenv("SCYLLA_HOSTS"), ","),
		Keyspace:    os.Getenv("SCYLLA_KEYSPACE"),
		Username:    os.Getenv("SCYLLA_ROLE"),
		Password:    os.Getenv("SCYLLA_PASSWORD"),
		SSLEnabled:  strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true",
		CACertPath:  os.Getenv("SCYLLA_SSL_CA_PATH"),
		Timeout:     5 * time.Second,
		NumConns:    20,
		Consistency: gocql.Quorum,
	}
}

func connectScylla() (*gocql.Session, error) {
	config := loadScyllaConfig()
	if config.Keyspace == "" {
		return nil, fmt.Errorf("SCYLLA_KEYSPACE non configuré")
	}

	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	cluster.Authenticator = gocql.PasswordAuthenticator{
		Username: config.Username,
		Password: config.Password,
	}

	if config.SSLEnabled && config.CACertPath != "" {
		sslOpts, err := scyllaSSLOptions(config.CACertPath)
		if err != nil {
			return nil, err
		}
		cluster.SslOpts = sslOpts
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	// Note: les tables doivent exister — voir scripts/kartly_init.cql
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Session ScyllaDB ouverte sur le keyspace '%s' (utilisateur: %s)",
		config.Keyspace, config.Username)
	return session, nil
}

// scyllaSSLOptions charge le certificat CA et l'attache comme racine de
// confiance de la connexion TLS vers le cluster.
func scyllaSSLOptions(caPath string) (*gocql.SslOptions, error) {
	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return nil, fmt.Errorf("impossible de lire le certificat CA: %v", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("impossible de parser le certificat CA")
	}
	return &gocql.SslOptions{
		Config: &tls.Config{RootCAs: pool},
	}, nil
}

func (s *Store) connectRedis(ctx context.Context) error {
	s.Redis = redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_HOST"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("erreur connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")
	return nil
}

func (s *Store) connectElastic() error {
	cfg := elasticsearch.Config{
		Addresses: []string{os.Getenv("ELASTIC_URL")},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	s.Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
	return nil
}

func (s *Store) connectMinIO(ctx context.Context) error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	bucketName := os.Getenv("MINIO_INVOICE_BUCKET")
	if bucketName == "" {
		bucketName = "kartly-invoices"
	}
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		log.Println("🪣 Bucket créé :", bucketName)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", bucketName)
	}

	s.MinIO = client
	s.InvoiceBucket = bucketName
	log.Println("✅ Connecté à MinIO :", endpoint)
	return nil
}

// Close ferme proprement les connexions partagées.
func (s *Store) Close() {
	if s.Scylla != nil {
		s.Scylla.Close()
		log.Println("🔌 Session ScyllaDB fermée")
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
}
