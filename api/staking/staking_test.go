// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/collator/api/staking"
	"github.com/vechain/collator/custodian"
	"github.com/vechain/collator/keys"
	"github.com/vechain/collator/staker"
	"github.com/vechain/collator/test/datagen"
	"github.com/vechain/collator/thor"
)

type reader struct {
	s *staker.Staker
}

func (r reader) Read(f func(*staker.Staker) error) error {
	return f(r.s)
}

var (
	ts *httptest.Server

	invulnerable = datagen.RandAddress()
	collator1    = datagen.RandAddress()
	collator2    = datagen.RandAddress()
	delegator    = datagen.RandAddress()
)

func TestStaking(t *testing.T) {
	initStakingServer(t)
	defer ts.Close()

	t.Run("getCandidates", testGetCandidates)
	t.Run("getCandidate", testGetCandidate)
	t.Run("getCandidateNotFound", testGetCandidateNotFound)
	t.Run("getCollators", testGetCollators)
	t.Run("getInvulnerables", testGetInvulnerables)
	t.Run("getStakes", testGetStakes)
	t.Run("getUnstaking", testGetUnstaking)
	t.Run("getSession", testGetSession)
	t.Run("getParams", testGetParams)
	t.Run("badAddress", testBadAddress)
}

func initStakingServer(t *testing.T) {
	var block uint32 = 1
	bank := custodian.NewBank(1)
	registry := keys.NewMemRegistry(invulnerable, collator1, collator2)

	s, err := staker.New(staker.DefaultParams(), staker.ClockFunc(func() uint32 { return block }), registry, bank, nil)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(staker.Genesis{
		Invulnerables:            []thor.Address{invulnerable},
		CandidacyBond:            10,
		MinStake:                 2,
		DesiredCandidates:        2,
		CollatorRewardPercentage: 20,
	}))

	for _, who := range []thor.Address{collator1, collator2, delegator} {
		bank.Mint(who, 100)
	}
	require.NoError(t, s.RegisterAsCandidate(collator1))
	require.NoError(t, s.RegisterAsCandidate(collator2))
	require.NoError(t, s.AddStake(delegator, collator1, 5))
	s.SetAutoCompoundPercentage(delegator, 50)

	// collator2 leaves, its bond waits in the unstaking queue
	require.NoError(t, s.LeaveIntent(collator2))
	s.OnBlockAuthored(collator1)
	s.OnSessionRotate(1)

	router := mux.NewRouter()
	staking.New(reader{s}).Mount(router, "/staking")
	ts = httptest.NewServer(router)
}

func httpGet(t *testing.T, path string, v any) int {
	res, err := http.Get(ts.URL + path) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if res.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.Unmarshal(body, v))
	}
	return res.StatusCode
}

func testGetCandidates(t *testing.T) {
	var candidates []staking.Candidate
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/candidates", &candidates))

	require.Len(t, candidates, 1)
	assert.Equal(t, collator1, candidates[0].Account)
	assert.Equal(t, uint64(10), candidates[0].Deposit)
	assert.Equal(t, uint64(15), candidates[0].Stake)
	assert.Equal(t, uint32(2), candidates[0].Stakers)
	require.NotNil(t, candidates[0].LastAuthored)
	assert.Equal(t, uint32(1), *candidates[0].LastAuthored)
}

func testGetCandidate(t *testing.T) {
	var detail staking.CandidateDetail
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/candidates/"+collator1.String(), &detail))

	assert.Equal(t, collator1, detail.Account)
	assert.Len(t, detail.Entries, 2)
	var total uint64
	for _, e := range detail.Entries {
		assert.Equal(t, collator1, e.Candidate)
		total += e.Amount
	}
	assert.Equal(t, detail.Stake, total)
}

func testGetCandidateNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpGet(t, "/staking/candidates/"+collator2.String(), nil))
}

func testGetCollators(t *testing.T) {
	var collators []thor.Address
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/collators", &collators))
	assert.Equal(t, []thor.Address{invulnerable, collator1}, collators)
}

func testGetInvulnerables(t *testing.T) {
	var invulnerables []thor.Address
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/invulnerables", &invulnerables))
	assert.Equal(t, []thor.Address{invulnerable}, invulnerables)
}

func testGetStakes(t *testing.T) {
	var info staking.StakerInfo
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/stakes/"+delegator.String(), &info))

	assert.Equal(t, delegator, info.Staker)
	assert.Equal(t, uint32(1), info.StakeCount)
	assert.Equal(t, thor.Percent(50), info.AutoCompound)
	require.Len(t, info.Entries, 1)
	assert.Equal(t, staking.StakeEntry{Candidate: collator1, Staker: delegator, Amount: 5}, info.Entries[0])
}

func testGetUnstaking(t *testing.T) {
	var reqs []staking.UnstakeRequest
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/unstaking/"+collator2.String(), &reqs))
	assert.Equal(t, []staking.UnstakeRequest{{Block: 1 + staker.DefaultParams().CollatorUnstakingDelay, Amount: 10}}, reqs)

	require.Equal(t, http.StatusOK, httpGet(t, "/staking/unstaking/"+delegator.String(), &reqs))
	assert.Empty(t, reqs)
}

func testGetSession(t *testing.T) {
	var session staking.Session
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/sessions/current", &session))
	assert.Equal(t, staking.Session{Index: 0, Current: true, Total: 1, Rewardable: 1}, session)

	require.Equal(t, http.StatusOK, httpGet(t, "/staking/sessions/9", &session))
	assert.Equal(t, staking.Session{Index: 9}, session)

	assert.Equal(t, http.StatusBadRequest, httpGet(t, "/staking/sessions/next", nil))
}

func testGetParams(t *testing.T) {
	var settings staking.Settings
	require.Equal(t, http.StatusOK, httpGet(t, "/staking/params", &settings))

	assert.Equal(t, staker.DefaultParams(), settings.Params)
	assert.Equal(t, staker.DefaultParams().Pot(), settings.Pot)
	assert.Equal(t, uint64(10), settings.CandidacyBond)
	assert.Equal(t, uint64(2), settings.MinStake)
	assert.Equal(t, uint32(2), settings.DesiredCandidates)
	assert.Equal(t, thor.Percent(20), settings.CollatorRewardPercentage)
}

func testBadAddress(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httpGet(t, "/staking/stakes/0x1234", nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, "/staking/unstaking/nope", nil))
}
