package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"frostline/internal/common"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"

	"crypto/sha256"
)

const (
	// Keyring service name
	keyringService = "frostline"
	// Salt for key derivation
	saltSize = 32
	// Number of iterations for PBKDF2
	pbkdf2Iterations = 100000
	// Key size for AES-256
	keySize = 32
)

// CredentialManager handles secure storage and retrieval of credentials.
// The OS keyring is preferred; an encrypted file store under the config
// directory is the fallback for headless environments.
type CredentialManager struct {
	useKeyring bool
	masterKey  []byte
}

// Credential represents a stored credential
type Credential struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Value     string            `json:"value"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Encrypted bool              `json:"encrypted"`
}

// NewCredentialManager creates a new credential manager
func NewCredentialManager() (*CredentialManager, error) {
	cm := &CredentialManager{
		useKeyring: isKeyringAvailable(),
	}

	if !cm.useKeyring {
		key, err := cm.getMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize master key: %w", err)
		}
		cm.masterKey = key
	}

	return cm, nil
}

// StoreCredential securely stores a credential
func (cm *CredentialManager) StoreCredential(name, credType, value string, metadata map[string]string) error {
	if cm.useKeyring {
		return cm.storeInKeyring(name, credType, value, metadata)
	}
	return cm.storeEncrypted(name, credType, value, metadata)
}

// GetCredential retrieves a stored credential
func (cm *CredentialManager) GetCredential(name string) (*Credential, error) {
	if cm.useKeyring {
		return cm.getFromKeyring(name)
	}
	return cm.getEncrypted(name)
}

// DeleteCredential removes a stored credential
func (cm *CredentialManager) DeleteCredential(name string) error {
	if cm.useKeyring {
		return keyring.Delete(keyringService, name)
	}
	return os.Remove(cm.credentialPath(name))
}

// Keyring storage methods

func (cm *CredentialManager) storeInKeyring(name, credType, value string, metadata map[string]string) error {
	cred := Credential{
		Name:     name,
		Type:     credType,
		Value:    value,
		Metadata: metadata,
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := keyring.Set(keyringService, name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

func (cm *CredentialManager) getFromKeyring(name string) (*Credential, error) {
	data, err := keyring.Get(keyringService, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get from keyring: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Encrypted file storage methods

func (cm *CredentialManager) storeEncrypted(name, credType, value string, metadata map[string]string) error {
	encrypted, err := cm.encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %w", err)
	}

	cred := Credential{
		Name:      name,
		Type:      credType,
		Value:     encrypted,
		Metadata:  metadata,
		Encrypted: true,
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	path := cm.credentialPath(name)
	if err := os.MkdirAll(filepath.Dir(path), common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	return os.WriteFile(path, data, common.FilePermissionSecure)
}

func (cm *CredentialManager) getEncrypted(name string) (*Credential, error) {
	data, err := os.ReadFile(cm.credentialPath(name)) // #nosec G304 - path derives from sanitized name
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	if cred.Encrypted {
		value, err := cm.decrypt(cred.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credential: %w", err)
		}
		cred.Value = value
		cred.Encrypted = false
	}

	return &cred, nil
}

func (cm *CredentialManager) credentialPath(name string) string {
	home, _ := os.UserHomeDir()
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	return filepath.Join(home, ".frostline", "credentials", safe+".json")
}

// Master key derivation

func (cm *CredentialManager) getMasterKey() ([]byte, error) {
	salt, err := cm.getOrCreateSalt()
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	secret := fmt.Sprintf("%s-%s-%s", keyringService, hostname, home)

	return pbkdf2.Key([]byte(secret), salt, pbkdf2Iterations, keySize, sha256.New), nil
}

func (cm *CredentialManager) getOrCreateSalt() ([]byte, error) {
	home, _ := os.UserHomeDir()
	saltPath := filepath.Join(home, ".frostline", "credentials", ".salt")

	if data, err := os.ReadFile(saltPath); err == nil && len(data) == saltSize { // #nosec G304
		return data, nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(saltPath), common.DirPermissionSecure); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := os.WriteFile(saltPath, salt, common.FilePermissionSecure); err != nil {
		return nil, fmt.Errorf("failed to persist salt: %w", err)
	}

	return salt, nil
}

// AES-GCM helpers

func (cm *CredentialManager) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cm.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (cm *CredentialManager) decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(cm.masterKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// isKeyringAvailable probes the OS keyring with a throwaway entry
func isKeyringAvailable() bool {
	probe := "frostline-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}
