package remotetest

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/remote"
)

func (s *Server) listForms(c *gin.Context) {
	s.mu.Lock()
	out := make([]formkit.RemoteForm, 0, len(s.forms))
	for _, k := range sortedKeys(s.forms) {
		out = append(out, s.forms[k])
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func bindPublish(c *gin.Context) (formkit.PublishPayload, bool) {
	var p formkit.PublishPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return p, false
	}
	if strings.TrimSpace(p.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"name": []string{"This field may not be blank."}})
		return p, false
	}
	return p, true
}

func (s *Server) createForm(c *gin.Context) {
	p, ok := bindPublish(c)
	if !ok {
		return
	}
	s.mu.Lock()
	s.nextForm++
	id := s.nextForm
	rf := formkit.RemoteForm{
		ID:         formkit.SchemaID(strconv.Itoa(id)),
		Name:       p.Name,
		FieldsJSON: rows(p.Fields),
		Fields:     rows(p.Fields),
		CreatedAt:  s.now().UTC(),
	}
	s.forms[id] = rf
	s.mu.Unlock()
	c.JSON(http.StatusCreated, rf)
}

func (s *Server) getForm(c *gin.Context) {
	id, ok := pathID(c)
	s.mu.Lock()
	rf, found := s.forms[id]
	s.mu.Unlock()
	if !ok || !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, rf)
}

// updateForm replaces name and fields, as the store does: the previous
// per-row fields are dropped and rebuilt from fields_data.
func (s *Server) updateForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}
	p, ok := bindPublish(c)
	if !ok {
		return
	}
	s.mu.Lock()
	rf, found := s.forms[id]
	if found {
		rf.Name = p.Name
		rf.FieldsJSON = rows(p.Fields)
		rf.Fields = rows(p.Fields)
		s.forms[id] = rf
	}
	s.mu.Unlock()
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, rf)
}

// deleteForm cascades to the form's instances.
func (s *Server) deleteForm(c *gin.Context) {
	id, ok := pathID(c)
	s.mu.Lock()
	_, found := s.forms[id]
	if found {
		delete(s.forms, id)
		for k, in := range s.instances {
			if in.Form.String() == strconv.Itoa(id) {
				delete(s.instances, k)
			}
		}
	}
	s.mu.Unlock()
	if !ok || !found {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) preview(c *gin.Context) {
	id, ok := pathID(c)
	s.mu.Lock()
	rf, found := s.forms[id]
	s.mu.Unlock()
	if !ok || !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, remote.Preview{Fields: rf.FieldsJSON})
}

func (s *Server) listInstances(c *gin.Context) {
	s.mu.Lock()
	keys := sortedKeys(s.instances)
	slices.Reverse(keys)
	out := make([]remote.Instance, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.instances[k])
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

type instanceBody struct {
	Form formkit.SchemaID `json:"form"`
	Data map[string]any   `json:"data"`
}

// bindInstanceLocked resolves the form an instance body refers to. s.mu
// must be held.
func (s *Server) bindInstanceLocked(body instanceBody) (formkit.RemoteForm, bool) {
	n, err := strconv.Atoi(body.Form.String())
	if err != nil {
		return formkit.RemoteForm{}, false
	}
	rf, ok := s.forms[n]
	return rf, ok
}

func (s *Server) createInstance(c *gin.Context) {
	var body instanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	rf, ok := s.bindInstanceLocked(body)
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"form": []string{"Invalid pk - object does not exist."}})
		return
	}
	s.nextInst++
	in := remote.Instance{
		ID:        formkit.SchemaID(strconv.Itoa(s.nextInst)),
		Form:      rf.ID,
		FormName:  rf.Name,
		Data:      body.Data,
		CreatedAt: s.now().UTC(),
	}
	s.instances[s.nextInst] = in
	s.mu.Unlock()
	c.JSON(http.StatusCreated, in)
}

func (s *Server) updateInstance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		notFound(c)
		return
	}
	var body instanceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	in, found := s.instances[id]
	if !found {
		s.mu.Unlock()
		notFound(c)
		return
	}
	rf, ok := s.bindInstanceLocked(body)
	if !ok {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"form": []string{"Invalid pk - object does not exist."}})
		return
	}
	in.Form, in.FormName, in.Data = rf.ID, rf.Name, body.Data
	s.instances[id] = in
	s.mu.Unlock()
	c.JSON(http.StatusOK, in)
}

func (s *Server) deleteInstance(c *gin.Context) {
	id, ok := pathID(c)
	s.mu.Lock()
	_, found := s.instances[id]
	delete(s.instances, id)
	s.mu.Unlock()
	if !ok || !found {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}
