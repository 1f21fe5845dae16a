package project

// Project is a named container owning an ordered list of files.
// Insertion order is display order.
type Project struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Files []*File `json:"files"`
}

// File is a named text document owned by exactly one project.
type File struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FindFile returns the file with the given id, or nil.
func (p *Project) FindFile(id string) *File {
	if p == nil {
		return nil
	}
	for _, f := range p.Files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (p *Project) hasFile(id string) bool {
	return p.FindFile(id) != nil
}
