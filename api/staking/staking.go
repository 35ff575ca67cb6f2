// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/collator/api/utils"
	"github.com/vechain/collator/staker"
)

// Reader grants read access to the engine between host calls.
type Reader interface {
	Read(func(s *staker.Staker) error) error
}

type Staking struct {
	reader Reader
}

func New(reader Reader) *Staking {
	return &Staking{reader}
}

func (st *Staking) handleGetCandidates(w http.ResponseWriter, _ *http.Request) error {
	var out []*Candidate
	if err := st.reader.Read(func(s *staker.Staker) error {
		all := s.Candidates()
		out = make([]*Candidate, 0, len(all))
		for _, c := range all {
			out = append(out, convertCandidate(s, c))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetCandidate(w http.ResponseWriter, req *http.Request) error {
	account, err := utils.AddressVar(req, "account")
	if err != nil {
		return err
	}
	var out *CandidateDetail
	if err := st.reader.Read(func(s *staker.Staker) error {
		c, ok := s.Candidate(account)
		if !ok {
			return utils.NotFound(errors.New("candidate not found"))
		}
		out = &CandidateDetail{
			Candidate: convertCandidate(s, c),
			Entries:   convertEntries(s.StakersOf(account)),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetCollators(w http.ResponseWriter, _ *http.Request) error {
	var out any
	if err := st.reader.Read(func(s *staker.Staker) error {
		out = s.Collators()
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetInvulnerables(w http.ResponseWriter, _ *http.Request) error {
	var out any
	if err := st.reader.Read(func(s *staker.Staker) error {
		out = s.Invulnerables()
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	who, err := utils.AddressVar(req, "staker")
	if err != nil {
		return err
	}
	var out *StakerInfo
	if err := st.reader.Read(func(s *staker.Staker) error {
		out = &StakerInfo{
			Staker:       who,
			StakeCount:   s.StakeCount(who),
			AutoCompound: s.AutoCompound(who),
			Entries:      convertEntries(s.StakesOf(who)),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetUnstaking(w http.ResponseWriter, req *http.Request) error {
	who, err := utils.AddressVar(req, "staker")
	if err != nil {
		return err
	}
	var out []UnstakeRequest
	if err := st.reader.Read(func(s *staker.Staker) error {
		out = convertRequests(s.UnstakingRequests(who))
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetSession(w http.ResponseWriter, req *http.Request) error {
	var (
		idx     uint32
		current = mux.Vars(req)["idx"] == "current"
	)
	if !current {
		var err error
		if idx, err = utils.Uint32Var(req, "idx"); err != nil {
			return err
		}
	}
	var out *Session
	if err := st.reader.Read(func(s *staker.Staker) error {
		if current {
			idx = s.CurrentSession()
		}
		totals := s.TotalBlocks(idx)
		out = &Session{
			Index:      idx,
			Current:    idx == s.CurrentSession(),
			Total:      totals.Total,
			Rewardable: totals.Rewardable,
			Pool:       s.Rewards(idx),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) handleGetSettings(w http.ResponseWriter, _ *http.Request) error {
	var out *Settings
	if err := st.reader.Read(func(s *staker.Staker) error {
		out = convertSettings(s)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, out)
}

func (st *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/candidates").
		Methods(http.MethodGet).
		Name("GET /staking/candidates").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetCandidates))
	sub.Path("/candidates/{account}").
		Methods(http.MethodGet).
		Name("GET /staking/candidates/{account}").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetCandidate))
	sub.Path("/collators").
		Methods(http.MethodGet).
		Name("GET /staking/collators").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetCollators))
	sub.Path("/invulnerables").
		Methods(http.MethodGet).
		Name("GET /staking/invulnerables").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetInvulnerables))
	sub.Path("/stakes/{staker}").
		Methods(http.MethodGet).
		Name("GET /staking/stakes/{staker}").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetStakes))
	sub.Path("/unstaking/{staker}").
		Methods(http.MethodGet).
		Name("GET /staking/unstaking/{staker}").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetUnstaking))
	sub.Path("/sessions/{idx}").
		Methods(http.MethodGet).
		Name("GET /staking/sessions/{idx}").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetSession))
	sub.Path("/params").
		Methods(http.MethodGet).
		Name("GET /staking/params").
		HandlerFunc(utils.WrapHandlerFunc(st.handleGetSettings))
}
