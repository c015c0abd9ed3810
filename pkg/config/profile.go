package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClinicProfile holds the clinic details used in notification emails.
type ClinicProfile struct {
	Name              string   `yaml:"name"`
	DoctorName        string   `yaml:"doctor_name"`
	DoctorSignature   string   `yaml:"doctor_signature"`
	DoctorCredentials string   `yaml:"doctor_credentials"`
	Phones            []string `yaml:"phones"`
	OwnerEmail        string   `yaml:"owner_email"`
	FromEmail         string   `yaml:"from_email"`
}

// LoadClinicProfile reads a YAML profile, expanding environment variables, and
// fills unset fields from base.
func LoadClinicProfile(path string, base ClinicProfile) (ClinicProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read clinic profile: %w", err)
	}

	var p ClinicProfile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &p); err != nil {
		return base, fmt.Errorf("parse clinic profile %s: %w", path, err)
	}

	if p.Name == "" {
		p.Name = base.Name
	}
	if p.DoctorName == "" {
		p.DoctorName = base.DoctorName
	}
	if len(p.Phones) == 0 {
		p.Phones = base.Phones
	}
	if p.OwnerEmail == "" {
		p.OwnerEmail = base.OwnerEmail
	}
	if p.DoctorSignature == "" {
		p.DoctorSignature = base.DoctorSignature
	}
	if p.DoctorCredentials == "" {
		p.DoctorCredentials = base.DoctorCredentials
	}
	if p.FromEmail == "" {
		p.FromEmail = base.FromEmail
	}
	return p, nil
}
