package models

import (
	"path/filepath"
	"strings"
)

// DocumentType is one of the fixed compliance document keys
type DocumentType string

const (
	DocBusinessRegistration DocumentType = "businessRegistration"
	DocGSTCertificate       DocumentType = "gstCertificate"
	DocPANCard              DocumentType = "panCard"
	DocBankStatement        DocumentType = "bankStatement"
	DocIdentityProof        DocumentType = "identityProof"
)

// DocumentTypes is the fixed document order used for listings and error reports
var DocumentTypes = []DocumentType{
	DocBusinessRegistration,
	DocGSTCertificate,
	DocPANCard,
	DocBankStatement,
	DocIdentityProof,
}

// ParseDocumentType returns false for keys outside the fixed set
func ParseDocumentType(s string) (DocumentType, bool) {
	for _, t := range DocumentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

const mib = 1024 * 1024

// DocumentPolicy is the upload schema of one document type
type DocumentPolicy struct {
	Type              DocumentType `json:"type"`
	Required          bool         `json:"required"`
	AllowedExtensions []string     `json:"allowedExtensions"`
	MaxBytes          int64        `json:"maxBytes"`
}

// AllowsExtension checks the file name's extension case-insensitively
func (p DocumentPolicy) AllowsExtension(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range p.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// DocumentPolicies maps each document type to its policy
type DocumentPolicies map[DocumentType]DocumentPolicy

// DefaultDocumentPolicies returns a fresh copy of the built-in policies
func DefaultDocumentPolicies() DocumentPolicies {
	anyFormat := []string{".pdf", ".jpg", ".jpeg", ".png"}
	return DocumentPolicies{
		DocBusinessRegistration: {Type: DocBusinessRegistration, Required: true, AllowedExtensions: anyFormat, MaxBytes: 5 * mib},
		DocGSTCertificate:       {Type: DocGSTCertificate, Required: false, AllowedExtensions: anyFormat, MaxBytes: 5 * mib},
		DocPANCard:              {Type: DocPANCard, Required: true, AllowedExtensions: anyFormat, MaxBytes: 2 * mib},
		DocBankStatement:        {Type: DocBankStatement, Required: true, AllowedExtensions: []string{".pdf"}, MaxBytes: 10 * mib},
		DocIdentityProof:        {Type: DocIdentityProof, Required: true, AllowedExtensions: anyFormat, MaxBytes: 2 * mib},
	}
}

// Required returns the required document types in fixed order
func (p DocumentPolicies) Required() []DocumentType {
	var out []DocumentType
	for _, t := range DocumentTypes {
		if p[t].Required {
			out = append(out, t)
		}
	}
	return out
}

// Ordered returns the policies in fixed document order
func (p DocumentPolicies) Ordered() []DocumentPolicy {
	out := make([]DocumentPolicy, 0, len(p))
	for _, t := range DocumentTypes {
		if policy, ok := p[t]; ok {
			out = append(out, policy)
		}
	}
	return out
}

// FileUpload is a validated file about to be sent to the document store
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

// DocumentUpload pairs an incoming file with the document key it is submitted for
type DocumentUpload struct {
	Type     DocumentType
	FileName string
	MimeType string
	Data     []byte
}

// Size of the payload in bytes
func (d DocumentUpload) Size() int64 {
	return int64(len(d.Data))
}
