package seed

import (
	"errors"
	"fmt"

	"thesisrepo/internal/models"

	"gorm.io/gorm"
)

// FacultySpec describes a faculty and the departments it owns.
type FacultySpec struct {
	Name        string   `yaml:"name"`
	Departments []string `yaml:"departments"`
}

// BuiltInFaculties is the catalogue installed on a fresh database.
var BuiltInFaculties = []FacultySpec{
	{Name: "Faculty of Engineering", Departments: []string{
		"Computer Engineering", "Electrical and Electronics Engineering",
		"Civil Engineering", "Industrial Engineering",
	}},
	{Name: "Faculty of Science", Departments: []string{
		"Mathematics", "Physics", "Molecular Biology and Genetics",
	}},
	{Name: "Faculty of Economics and Administrative Sciences", Departments: []string{
		"Economics", "Business Administration", "International Relations",
	}},
	{Name: "Faculty of Architecture", Departments: []string{
		"Architecture", "Interior Architecture",
	}},
}

// Lookups upserts faculties and their departments. Running it twice leaves
// one row per name.
func Lookups(db *gorm.DB, specs []FacultySpec) ([]models.Department, error) {
	var departments []models.Department
	for _, spec := range specs {
		err := db.Transaction(func(tx *gorm.DB) error {
			var faculty models.Faculty
			if err := tx.Where(models.Faculty{Name: spec.Name}).FirstOrCreate(&faculty).Error; err != nil {
				return err
			}

			for _, name := range spec.Departments {
				var dept models.Department
				err := tx.Where("faculty_id = ? AND name = ?", faculty.ID, name).First(&dept).Error
				switch {
				case err == nil:
				case errors.Is(err, gorm.ErrRecordNotFound):
					dept = models.Department{Name: name, FacultyID: faculty.ID}
					if err := tx.Omit("Faculty").Create(&dept).Error; err != nil {
						return err
					}
				default:
					return err
				}
				departments = append(departments, dept)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("seed faculty %s: %w", spec.Name, err)
		}
	}
	return departments, nil
}
